package directory

import (
	"math"
	"strings"
)

// ResolverConfig holds the immutable tables the fee resolver works from.
// All maps are read-only once the resolver is built.
type ResolverConfig struct {
	// CategoryNames maps a category code from the listing query to the
	// Korean department name substring used to match schedule entries.
	CategoryNames map[string]string
	// OfflineCategories always resolve to an in-person consultation,
	// regardless of the requested modality.
	OfflineCategories map[string]bool
	// WeightCategories are matched by synonym search instead of a single
	// name substring.
	WeightCategories map[string]bool
	// WeightSynonyms are the department-name fragments that identify a
	// weight-management schedule entry.
	WeightSynonyms []string
	// SpecialtyPrices is the fallback price table keyed by the doctor's
	// specialization label.
	SpecialtyPrices map[string]int
	// DefaultPrice applies when the specialization is not in the table.
	DefaultPrice int
	// OfflineMarkup multiplies the fallback price for in-person visits.
	// It is never applied to prices read from a doctor's own schedule.
	OfflineMarkup float64
}

// DefaultResolverConfig returns the production pricing tables.
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		CategoryNames: map[string]string{
			"obesity":      "비만",
			"diet":         "다이어트",
			"internal":     "내과",
			"dermatology":  "피부과",
			"orthopedics":  "정형외과",
			"neurosurgery": "신경외과",
			"pediatrics":   "소아청소년과",
			"gynecology":   "산부인과",
			"psychiatry":   "정신건강의학과",
			"family":       "가정의학과",
		},
		OfflineCategories: map[string]bool{
			"obesity":      true,
			"diet":         true,
			"orthopedics":  true,
			"dermatology":  true,
			"neurosurgery": true,
		},
		WeightCategories: map[string]bool{
			"obesity": true,
			"diet":    true,
		},
		WeightSynonyms: []string{"비만", "체중", "다이어트", "GLP"},
		SpecialtyPrices: map[string]int{
			"내과":      15000,
			"가정의학과":   15000,
			"피부과":     20000,
			"정형외과":    25000,
			"신경외과":    30000,
			"소아청소년과":  13000,
			"산부인과":    20000,
			"정신건강의학과": 25000,
		},
		DefaultPrice:  15000,
		OfflineMarkup: 1.2,
	}
}

// Resolved is the outcome of a fee resolution. Price is always positive;
// Offline reports the effective modality after forced-offline rules.
type Resolved struct {
	Price   int
	Offline bool
}

// Resolver computes the consultation fee shown for a clinic before booking.
// Resolve never fails: every lookup path ends in a usable price.
type Resolver struct {
	cfg ResolverConfig
}

func NewResolver(cfg ResolverConfig) *Resolver {
	return &Resolver{cfg: cfg}
}

// Resolve walks the doctor's fee schedule for a price matching the category
// and modality, falling back to any active entry of the right modality, and
// finally to the specialization price table. The offline markup applies only
// on the specialization-table path; schedule prices are taken as configured.
func (r *Resolver) Resolve(schedules []FeeSchedule, specialization, category string, requested Modality) Resolved {
	offline := requested == ModalityOffline || r.cfg.OfflineCategories[category]
	modality := ModalityOnline
	if offline {
		modality = ModalityOffline
	}

	if e := r.matchCategory(schedules, category, modality); e != nil {
		return Resolved{Price: e.BasePrice, Offline: offline}
	}
	for i := range schedules {
		e := &schedules[i]
		if e.Active && e.Modality == modality {
			return Resolved{Price: e.BasePrice, Offline: offline}
		}
	}

	price, ok := r.cfg.SpecialtyPrices[specialization]
	if !ok {
		price = r.cfg.DefaultPrice
	}
	if offline {
		price = int(math.Round(float64(price) * r.cfg.OfflineMarkup))
	}
	return Resolved{Price: price, Offline: offline}
}

func (r *Resolver) matchCategory(schedules []FeeSchedule, category string, modality Modality) *FeeSchedule {
	if r.cfg.WeightCategories[category] {
		for i := range schedules {
			e := &schedules[i]
			if !e.Active || e.Modality != modality {
				continue
			}
			for _, syn := range r.cfg.WeightSynonyms {
				if strings.Contains(e.DepartmentName, syn) {
					return e
				}
			}
		}
		return nil
	}
	name := r.cfg.CategoryNames[category]
	if name == "" {
		return nil
	}
	for i := range schedules {
		e := &schedules[i]
		if e.Active && e.Modality == modality && strings.Contains(e.DepartmentName, name) {
			return e
		}
	}
	return nil
}
