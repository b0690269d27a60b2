package dedup

import (
	"strings"
	"time"

	"tendertriage/normalize"
	"tendertriage/types"
)

// GenerateKeys derives the three identity keys for a notice. Missing source
// fields degrade the affected tier to "" — key generation never fails.
//
// Tier reliability, highest first:
//   - UUIDKey: the source-global procedure identifier, present only when the
//     feed supplies one. Collisions are near-impossible.
//   - CompositeKey: normalized title + buyer + deadline. Always producible;
//     two notices with identical normalized identity fields always produce
//     identical composite keys.
//   - SecondaryKey: buyer SIRET + deadline. SIRET+deadline can coincide
//     across unrelated notices, so this tier is consulted last.
func GenerateKeys(r *types.CanonicalRecord) types.DedupKeys {
	keys := types.DedupKeys{
		CompositeKey: CompositeKey(r.Title, r.BuyerName, r.Deadline),
	}

	if pid := strings.TrimSpace(r.ProcedureID); pid != "" {
		keys.UUIDKey = normalize.KeyComponent(pid)
	}

	if siret := siretDigits(r.BuyerSiret); siret != "" && r.Deadline != nil {
		keys.SecondaryKey = siret + "|" + r.Deadline.Format("2006-01-02")
	}

	return keys
}

// CompositeKey builds the always-available key from normalized title, buyer
// and deadline. A nil deadline contributes an empty segment rather than
// failing the tier.
func CompositeKey(title, buyer string, deadline *time.Time) string {
	day := ""
	if deadline != nil {
		day = deadline.Format("2006-01-02")
	}
	return normalize.KeyComponent(title) + "|" + normalize.KeyComponent(buyer) + "|" + day
}

// siretDigits keeps only the digits of a SIRET so formatting variants
// ("123 456 789 00012") collapse to the same key segment.
func siretDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteByte(byte(r))
		}
	}
	return b.String()
}
