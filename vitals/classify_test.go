// Copyright (c) My FirstCare
// SPDX-License-Identifier: Apache-2.0

package vitals_test

import (
	"fmt"
	"testing"

	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/vitals"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		desc   string
		topic  string
		family vitals.Family
		ok     bool
	}{
		{desc: "base-station heartbeat", topic: vitals.TopicAVA4Heartbeat, family: vitals.FamilyAVA4, ok: true},
		{desc: "base-station reading", topic: vitals.TopicAVA4Reading, family: vitals.FamilyAVA4, ok: true},
		{desc: "watch vital sign", topic: vitals.TopicKatiVitalSign, family: vitals.FamilyKati, ok: true},
		{desc: "watch SOS", topic: vitals.TopicKatiSOS, family: vitals.FamilyKati, ok: true},
		{desc: "kiosk", topic: vitals.TopicQube, family: vitals.FamilyQubeVital, ok: true},
		{desc: "unknown topic", topic: "iMEDE_watch/firmware"},
		{desc: "empty topic", topic: ""},
	}

	for _, tc := range cases {
		family, ok := vitals.Classify(tc.topic)
		assert.Equal(t, tc.ok, ok, fmt.Sprintf("%s: unexpected classification\n", tc.desc))
		if tc.ok {
			assert.Equal(t, tc.family, family, fmt.Sprintf("%s: unexpected family\n", tc.desc))
		}
	}
}

func TestTopicsAreDisjoint(t *testing.T) {
	seen := make(map[string]vitals.Family)
	for _, family := range []vitals.Family{vitals.FamilyAVA4, vitals.FamilyKati, vitals.FamilyQubeVital} {
		for _, topic := range vitals.Topics(family) {
			prev, dup := seen[topic]
			assert.False(t, dup, fmt.Sprintf("topic %s claimed by both %s and %s", topic, prev, family))
			seen[topic] = family
		}
	}
}
