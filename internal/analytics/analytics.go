// Package analytics derives dashboard statistics from a transaction list.
// Every function is pure and works only on the list it is given.
package analytics

import (
	"math"
	"sort"

	"github.com/Veraticus/upi-triage/internal/model"
)

// RecentFailureCount is how many failures the dashboard lists.
const RecentFailureCount = 5

// Summary holds the headline counters.
type Summary struct {
	Total         int
	Failed        int
	Succeeded     int
	Pending       int
	SuccessRate   float64
	TotalVolume   float64
	AverageAmount float64
}

// Summarize computes the headline counters for transactions. The success
// rate counts everything that did not fail, rounded to one decimal.
func Summarize(transactions []model.Transaction) Summary {
	s := Summary{Total: len(transactions)}
	for _, txn := range transactions {
		s.TotalVolume += txn.Amount
		switch {
		case txn.Status.Is(model.StatusFailed):
			s.Failed++
		case txn.Status.Is(model.StatusPending):
			s.Pending++
		case txn.Status.Is(model.StatusSuccess):
			s.Succeeded++
		}
	}
	if s.Total > 0 {
		s.SuccessRate = round1(float64(s.Total-s.Failed) / float64(s.Total) * 100)
		s.AverageAmount = s.TotalVolume / float64(s.Total)
	}
	return s
}

// FailureTypeStat is the count of failures of one type.
type FailureTypeStat struct {
	Type       model.FailureType
	Count      int
	Percentage float64
}

// FailureBreakdown counts failed transactions by failure type, most common
// first. Failures without a type are grouped under the empty type.
func FailureBreakdown(transactions []model.Transaction) []FailureTypeStat {
	counts := make(map[model.FailureType]int)
	failed := 0
	for _, txn := range transactions {
		if !txn.IsFailed() {
			continue
		}
		failed++
		counts[txn.FailureType]++
	}

	stats := make([]FailureTypeStat, 0, len(counts))
	for ft, count := range counts {
		stats = append(stats, FailureTypeStat{
			Type:       ft,
			Count:      count,
			Percentage: round1(float64(count) / float64(failed) * 100),
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Type < stats[j].Type
	})
	return stats
}

// AmountBand is a half-open amount range [Min, Max). Max of +Inf is open ended.
type AmountBand struct {
	Label string
	Min   float64
	Max   float64
}

// Contains reports whether amount falls in the band.
func (b AmountBand) Contains(amount float64) bool {
	return amount >= b.Min && amount < b.Max
}

// DefaultAmountBands returns the bands used by the dashboard.
func DefaultAmountBands() []AmountBand {
	return []AmountBand{
		{Label: "₹0-100", Min: 0, Max: 100},
		{Label: "₹100-1000", Min: 100, Max: 1000},
		{Label: "₹1000-10000", Min: 1000, Max: 10000},
		{Label: "₹10000+", Min: 10000, Max: math.Inf(1)},
	}
}

// BandStat is the failure rate for one amount band.
type BandStat struct {
	Band        AmountBand
	Total       int
	Failed      int
	FailureRate float64
}

// AmountBreakdown reports the failure rate per band, in band order.
func AmountBreakdown(transactions []model.Transaction, bands []AmountBand) []BandStat {
	stats := make([]BandStat, len(bands))
	for i, band := range bands {
		stats[i].Band = band
	}
	for _, txn := range transactions {
		for i := range stats {
			if !stats[i].Band.Contains(txn.Amount) {
				continue
			}
			stats[i].Total++
			if txn.IsFailed() {
				stats[i].Failed++
			}
			break
		}
	}
	for i := range stats {
		stats[i].FailureRate = rate(stats[i].Failed, stats[i].Total)
	}
	return stats
}

// BankStat is the failure rate for one sender bank.
type BankStat struct {
	Bank        string
	Total       int
	Failed      int
	FailureRate float64
}

// BankBreakdown reports the failure rate per sender bank, busiest first.
func BankBreakdown(transactions []model.Transaction) []BankStat {
	index := make(map[string]int)
	var stats []BankStat
	for _, txn := range transactions {
		bank := txn.SenderBank
		if bank == "" {
			bank = "Unknown"
		}
		i, ok := index[bank]
		if !ok {
			i = len(stats)
			index[bank] = i
			stats = append(stats, BankStat{Bank: bank})
		}
		stats[i].Total++
		if txn.IsFailed() {
			stats[i].Failed++
		}
	}
	for i := range stats {
		stats[i].FailureRate = rate(stats[i].Failed, stats[i].Total)
	}
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].Total != stats[j].Total {
			return stats[i].Total > stats[j].Total
		}
		return stats[i].Bank < stats[j].Bank
	})
	return stats
}

// RecentFailures returns the first n failed transactions in list order.
func RecentFailures(transactions []model.Transaction, n int) []model.Transaction {
	out := make([]model.Transaction, 0, n)
	for _, txn := range transactions {
		if len(out) == n {
			break
		}
		if txn.IsFailed() {
			out = append(out, txn)
		}
	}
	return out
}

// Report bundles every statistic for one list.
type Report struct {
	Summary        Summary
	FailureTypes   []FailureTypeStat
	AmountBands    []BandStat
	Banks          []BankStat
	RecentFailures []model.Transaction
}

// Build computes a full report for transactions.
func Build(transactions []model.Transaction) Report {
	return Report{
		Summary:        Summarize(transactions),
		FailureTypes:   FailureBreakdown(transactions),
		AmountBands:    AmountBreakdown(transactions, DefaultAmountBands()),
		Banks:          BankBreakdown(transactions),
		RecentFailures: RecentFailures(transactions, RecentFailureCount),
	}
}

func rate(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return round1(float64(part) / float64(total) * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
