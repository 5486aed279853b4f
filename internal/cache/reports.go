package cache

import "github.com/lfca/church-admin-be/internal/models"

// FinanceSummary aggregates transactions per currency. Buckets are never
// summed across currency codes.
type FinanceSummary struct {
	Totals     map[models.Currency]float64                            `json:"totals"`
	ByCategory map[models.FinanceCategory]map[models.Currency]float64 `json:"by_category"`
	Count      int                                                    `json:"count"`
}

// SummarizeFinances computes per-currency totals over the current snapshot.
func (c *Cache) SummarizeFinances() FinanceSummary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	summary := FinanceSummary{
		Totals:     make(map[models.Currency]float64),
		ByCategory: make(map[models.FinanceCategory]map[models.Currency]float64),
		Count:      len(c.finances),
	}
	for _, f := range c.finances {
		summary.Totals[f.Currency] += f.Amount
		bucket := summary.ByCategory[f.Category]
		if bucket == nil {
			bucket = make(map[models.Currency]float64)
			summary.ByCategory[f.Category] = bucket
		}
		bucket[f.Currency] += f.Amount
	}
	return summary
}

// MemberFinanceTotals sums a single member's transactions per currency.
func (c *Cache) MemberFinanceTotals(memberID string) map[models.Currency]float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	totals := make(map[models.Currency]float64)
	for _, f := range c.finances {
		if f.MemberID != nil && *f.MemberID == memberID {
			totals[f.Currency] += f.Amount
		}
	}
	return totals
}

// AttendanceSummary counts check-ins split into member and visitor buckets.
type AttendanceSummary struct {
	Members  int `json:"members"`
	Visitors int `json:"visitors"`
	Total    int `json:"total"`
}

// SummarizeAttendance counts check-ins for a service type; an empty service
// type counts everything.
func (c *Cache) SummarizeAttendance(service models.ServiceType) AttendanceSummary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var summary AttendanceSummary
	for _, a := range c.attendance {
		if service != "" && a.ServiceName != service {
			continue
		}
		summary.Total++
		if a.IsVisitor {
			summary.Visitors++
		} else {
			summary.Members++
		}
	}
	return summary
}

// AttendanceByService filters the snapshot to one service type, preserving
// newest-first order.
func (c *Cache) AttendanceByService(service models.ServiceType) []models.AttendanceRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []models.AttendanceRecord
	for _, a := range c.attendance {
		if a.ServiceName == service {
			out = append(out, a)
		}
	}
	return out
}
