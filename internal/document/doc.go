// Package document defines the tagged-variant value model shared by
// stored documents, filter literals, and update values, plus the JSON
// codec between Values and the storage substrate's TEXT representation.
//
// The variant set mirrors JSON: Null, Bool, Int, Float, String, Array,
// Object. Keeping Int and Float as distinct variants lets equality be
// defined precisely per variant; the codec uses json.Number so integer
// payloads survive the round trip without float64 precision loss.
package document
