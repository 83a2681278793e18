// Copyright (c) My FirstCare
// SPDX-License-Identifier: Apache-2.0

package vitals

// Bus topics are fixed per family and non-overlapping, so classification is
// purely by topic name. Payload content is never needed to classify.
const (
	// AVA4 base-station topics.
	TopicAVA4Heartbeat = "ESP32_BLE_GW_TX"
	TopicAVA4Reading   = "dusun_sub"

	// Kati watch topics, one per reading category.
	TopicKatiVitalSign = "iMEDE_watch/VitalSign"
	TopicKatiBatch     = "iMEDE_watch/AP55"
	TopicKatiHeartbeat = "iMEDE_watch/hb"
	TopicKatiLocation  = "iMEDE_watch/location"
	TopicKatiSleep     = "iMEDE_watch/sleepdata"
	TopicKatiSOS       = "iMEDE_watch/SOS"
	TopicKatiFallDown  = "iMEDE_watch/fallDown"
	TopicKatiOnline    = "iMEDE_watch/onlineTrigger"

	// QubeVital kiosks share one topic; heartbeats and attribute reports are
	// discriminated by the in-payload type field.
	TopicQube = "CM4_BLE_GW_TX"
)

var familyTopics = map[Family][]string{
	FamilyAVA4: {
		TopicAVA4Heartbeat,
		TopicAVA4Reading,
	},
	FamilyKati: {
		TopicKatiVitalSign,
		TopicKatiBatch,
		TopicKatiHeartbeat,
		TopicKatiLocation,
		TopicKatiSleep,
		TopicKatiSOS,
		TopicKatiFallDown,
		TopicKatiOnline,
	},
	FamilyQubeVital: {
		TopicQube,
	},
}

var topicFamilies = func() map[string]Family {
	tf := make(map[string]Family)
	for family, topics := range familyTopics {
		for _, topic := range topics {
			tf[topic] = family
		}
	}
	return tf
}()

// Classify returns the device family publishing on the given topic.
func Classify(topic string) (Family, bool) {
	f, ok := topicFamilies[topic]
	return f, ok
}

// Topics returns the fixed topic list of a family.
func Topics(family Family) []string {
	topics := make([]string, len(familyTopics[family]))
	copy(topics, familyTopics[family])

	return topics
}
