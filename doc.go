// Copyright (c) My FirstCare
// SPDX-License-Identifier: Apache-2.0

// Package stardust contains definitions shared by the vitals ingestion
// services: service health/version reporting and identity generation.
package stardust
