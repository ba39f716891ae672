package pricing

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"github.com/yourusername/arb-scanner/internal/models"
)

// FingerprintLength is the number of hex characters kept from the digest
const FingerprintLength = 16

// Fingerprint derives a stable identity for an opportunity so the same
// arbitrage seen in consecutive snapshots is alerted once. CapturedAt,
// stakes and the computed margin do not contribute.
func Fingerprint(opp models.ArbOpportunity) string {
	legs := []models.BestLeg{opp.LegA, opp.LegB}
	sort.Slice(legs, func(i, j int) bool {
		return legs[i].Outcome < legs[j].Outcome
	})

	parts := []string{opp.GameID, string(opp.Market)}
	withLine := opp.Market.IsLineMarket()
	for _, leg := range legs {
		if withLine {
			line := ""
			if leg.Line != nil {
				line = canonicalLine(*leg.Line)
			}
			parts = append(parts, line)
		}
		parts = append(parts, leg.Outcome, leg.Bookmaker, strconv.Itoa(leg.OddsAmerican))
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])[:FingerprintLength]
}
