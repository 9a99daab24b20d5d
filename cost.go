// SPDX-License-Identifier: MIT
// Source: github.com/kmar/mlz

package mlz

// computeSavings estimates the bit savings of encoding a match of the
// given (distance, length) versus encoding it as literals, used by the
// savingsBest acceptance criterion in matcher.go (no parser calls
// savingsBest; level 10 uses optimalSavings). Ported verbatim from
// mlz_compute_savings: 9 bits/literal baseline (1 control bit + 8 data
// bits) minus the match's static encoding overhead.
func computeSavings(dist, length int) int {
	tinyLen := length >= MinMatch && length < MinMatch+(1<<3)

	var bitCost int
	switch {
	case tinyLen && dist <= 256:
		bitCost = 3 + 3 + 8
	case tinyLen && dist < (1<<13):
		bitCost = 3 + 3 + 16
	case tinyLen:
		bitCost = 3 + 3 + 16
	default:
		bitCost = 3 + 8 + 16
		if length >= 255 {
			bitCost += 16
		}
	}
	return 9*length - bitCost
}

// tokenCostBits returns the exact serialized bit-length of a match token
// for the given (distance, length) shape, used by the optimal parser's
// forward/backward cost recurrence. Mirrors the branch structure of
// mlz_output_match's match-encoding half exactly (not the savings
// heuristic, which only approximates it for the tiny-length case).
func tokenCostBits(dist, length int) int {
	tinyLen := length >= MinMatch && length < MinMatch+(1<<3)

	switch {
	case dist > 0 && dist-1 < 256 && tinyLen:
		return 3 + 3 + 8
	case tinyLen && dist < (1<<13):
		return 3 + 16
	case tinyLen:
		return 3 + 3 + 16
	default:
		bits := 3 + 8 + 16
		if length-MinMatch >= 255 {
			bits += 16
		}
		return bits
	}
}

// literalCostBits is the bit cost of encoding one literal byte outside a
// literal run (1 control bit + 8 data bits).
const literalCostBits = 9

// optimalSavings is the DP parser's per-position match-quality metric:
// exact bits saved by taking this match versus encoding the same bytes
// as literals. It differs from computeSavings (savingsBest's metric) by
// using the token codec's exact cost
// (tokenCostBits) rather than the cheaper approximation, since the DP
// parser can afford the extra precision during its forward scan.
func optimalSavings(dist, length int) int {
	return literalCostBits*length - tokenCostBits(dist, length)
}
