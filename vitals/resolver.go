// Copyright (c) My FirstCare
// SPDX-License-Identifier: Apache-2.0

package vitals

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/TELY01-DEV/stardust-my-firstcare-com-sub003/pkg/errors"
)

// ErrPatientNotFound indicates an exhausted resolution chain. It never
// occurs for QubeVital identities, which fall back to placeholder
// provisioning.
var ErrPatientNotFound = errors.New("no patient registered for device identity")

// strategy is one lookup in a family's ordered resolution chain. The first
// strategy returning a non-empty patient reference wins.
type strategy struct {
	name ResolutionStrategy
	fn   func(ctx context.Context) (PatientRef, error)
}

// Resolver maps device identities to patient records through an ordered
// chain of lookup strategies per family, caching hits in the route map.
type Resolver struct {
	patients  PatientRepository
	devices   DeviceRepository
	hospitals HospitalRepository
	routes    RouteMapRepository
	logger    *slog.Logger
}

// NewResolver instantiates the patient resolver.
func NewResolver(patients PatientRepository, devices DeviceRepository, hospitals HospitalRepository, routes RouteMapRepository, logger *slog.Logger) *Resolver {
	return &Resolver{
		patients:  patients,
		devices:   devices,
		hospitals: hospitals,
		routes:    routes,
		logger:    logger,
	}
}

// Resolve produces a patient reference for a device identity. Resolution is
// deterministic: the same identity and store state always yield the same
// reference. AVA4 and Kati identities fail with ErrPatientNotFound when the
// chain is exhausted; QubeVital identities provision a placeholder patient
// instead, since kiosk readings always carry a citizen identifier.
func (r *Resolver) Resolve(ctx context.Context, id DeviceIdentity, rt ReadingType) (PatientRef, error) {
	key := routeKey(id)

	if pid, err := r.routes.Get(ctx, key); err == nil && pid != "" {
		return PatientRef{ID: pid, Strategy: StrategyRouteCache}, nil
	}

	for _, s := range r.chain(ctx, id, rt) {
		ref, err := s.fn(ctx)
		if err != nil || ref.ID == "" {
			continue
		}
		ref.Strategy = s.name
		r.cache(ctx, key, ref.ID)

		return ref, nil
	}

	if id.Family == FamilyQubeVital {
		ref, err := r.patients.EnsurePlaceholder(ctx, id.CitizenID, id.Demographics)
		if err != nil {
			return PatientRef{}, err
		}
		ref.Strategy = StrategyPlaceholder
		r.cache(ctx, key, ref.ID)

		return ref, nil
	}

	return PatientRef{}, ErrPatientNotFound
}

func (r *Resolver) chain(ctx context.Context, id DeviceIdentity, rt ReadingType) []strategy {
	switch id.Family {
	case FamilyAVA4:
		chain := []strategy{
			{StrategyGatewayMAC, func(ctx context.Context) (PatientRef, error) {
				return r.patients.RetrieveByGatewayMAC(ctx, id.GatewayMAC)
			}},
		}
		if id.SubDeviceMAC != "" {
			chain = append(chain,
				strategy{StrategyDeviceMAC, func(ctx context.Context) (PatientRef, error) {
					return r.patients.RetrieveBySubDeviceMAC(ctx, rt, id.SubDeviceMAC)
				}},
				strategy{StrategyDeviceRegistry, func(ctx context.Context) (PatientRef, error) {
					assignment, err := r.devices.RetrieveAssignment(ctx, id.SubDeviceMAC)
					if err != nil {
						return PatientRef{}, err
					}
					return PatientRef{ID: assignment.PatientID}, nil
				}},
			)
		}
		return chain
	case FamilyKati:
		return []strategy{
			{StrategyWatchRegistry, func(ctx context.Context) (PatientRef, error) {
				watch, err := r.devices.RetrieveWatch(ctx, id.IMEI)
				if err != nil {
					return PatientRef{}, err
				}
				return PatientRef{ID: watch.PatientID}, nil
			}},
			{StrategyWatchIMEI, func(ctx context.Context) (PatientRef, error) {
				return r.patients.RetrieveByWatchIMEI(ctx, id.IMEI)
			}},
		}
	case FamilyQubeVital:
		// The kiosk facility lookup is informational only and never blocks
		// resolution.
		if _, err := r.hospitals.RetrieveByKioskMAC(ctx, id.KioskMAC); err != nil {
			r.logger.Debug("kiosk facility lookup failed", slog.String("mac", id.KioskMAC), slog.Any("error", err))
		}
		return []strategy{
			{StrategyCitizenID, func(ctx context.Context) (PatientRef, error) {
				return r.patients.RetrieveByCitizenID(ctx, id.CitizenID)
			}},
		}
	default:
		return nil
	}
}

func (r *Resolver) cache(ctx context.Context, key, patientID string) {
	if err := r.routes.Save(ctx, key, patientID); err != nil {
		r.logger.Warn("failed to cache patient route", slog.String("key", key), slog.Any("error", err))
	}
}

// routeKey builds the family-scoped cache key for a device identity.
func routeKey(id DeviceIdentity) string {
	switch id.Family {
	case FamilyAVA4:
		if id.SubDeviceMAC != "" {
			return fmt.Sprintf("%s:%s:%s", id.Family, id.GatewayMAC, id.SubDeviceMAC)
		}
		return fmt.Sprintf("%s:%s", id.Family, id.GatewayMAC)
	case FamilyKati:
		return fmt.Sprintf("%s:%s", id.Family, id.IMEI)
	case FamilyQubeVital:
		return fmt.Sprintf("%s:%s", id.Family, NormalizeCitizenID(id.CitizenID))
	default:
		return ""
	}
}
