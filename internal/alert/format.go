// Package alert formats, delivers and deduplicates arbitrage notifications.
package alert

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yourusername/arb-scanner/internal/models"
)

// FormatArbMessage renders one opportunity as a Discord message
func FormatArbMessage(opp models.ArbOpportunity) string {
	a, b := opp.LegA, opp.LegB
	total := opp.TotalStake()
	percent := opp.ArbPercent * 100

	var sb strings.Builder
	fmt.Fprintf(&sb, "**ARB FOUND** (%.2f%%)\n", percent)
	sb.WriteString("```\n")
	fmt.Fprintf(&sb, "Game:   %s vs %s\n", a.Outcome, b.Outcome)
	fmt.Fprintf(&sb, "Market: %s\n", opp.Market)
	sb.WriteString("\n")
	sb.WriteString(formatLeg(a) + "\n")
	sb.WriteString(formatLeg(b) + "\n")
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Stake split ($%s):\n", formatAmount(total))
	fmt.Fprintf(&sb, "  %s: $%.2f\n", a.Outcome, opp.Stakes[a.Outcome])
	fmt.Fprintf(&sb, "  %s: $%.2f\n", b.Outcome, opp.Stakes[b.Outcome])
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Guaranteed profit: $%.2f\n", opp.GuaranteedProfit(total))
	sb.WriteString("```")
	return sb.String()
}

func formatLeg(leg models.BestLeg) string {
	label := leg.Outcome
	if leg.Line != nil {
		label += " (" + signedLine(*leg.Line) + ")"
	}
	return fmt.Sprintf("  %-35s  %+5d  @ %s", label, leg.OddsAmerican, leg.Bookmaker)
}

// signedLine renders 3.5 as "+3.5" and -3 as "-3"
func signedLine(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if v >= 0 {
		return "+" + s
	}
	return s
}

func formatAmount(v float64) string {
	return strings.TrimSuffix(strconv.FormatFloat(v, 'f', 2, 64), ".00")
}
