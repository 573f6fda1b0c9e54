// Package event implements the byte-level nostr event splicer the miner
// hashes: it locates the "nonce" tag (or the "tags" array to insert one
// into) and the "created_at" field by plain text search, and rewrites only
// the bytes inside those two windows. It never goes through encoding/json,
// because a JSON library could reorder keys, re-escape strings, or
// reformat whitespace — any of which would change the bytes the relay (and
// every other miner) hashes.
//
// The search itself is deliberately naive: the first textual occurrence of
// "nonce" / "tags" / "created_at" is authoritative. An event whose content
// string happens to contain one of those tokens ahead of the real field is
// adversarial input and is the caller's problem, not this package's.
package event

import (
	"bytes"
	"strconv"
)

// noncePlan describes where a nonce value goes in an event buffer, and what
// literal bytes wrap the decimal rendering of the nonce. It's computed once
// per mining session (the surrounding bytes don't change between nonce
// attempts) and rendered per attempt by Render.
type noncePlan struct {
	prefix    []byte
	wrapOpen  []byte
	wrapClose []byte
	suffix    []byte
}

// render writes prefix + wrapOpen + decimal(nonce) + wrapClose + suffix into
// dst[:0], reusing dst's backing array when it has enough capacity. This is
// the allocation-free per-attempt path the search engine uses.
func (p noncePlan) render(dst []byte, nonce uint64) []byte {
	dst = dst[:0]
	dst = append(dst, p.prefix...)
	dst = append(dst, p.wrapOpen...)
	dst = strconv.AppendUint(dst, nonce, 10)
	dst = append(dst, p.wrapClose...)
	dst = append(dst, p.suffix...)
	return dst
}

var (
	tokNonce     = []byte(`"nonce"`)
	tokTags      = []byte(`"tags"`)
	tokCreatedAt = []byte(`"created_at"`)
)

// buildNoncePlan locates the existing "nonce" tag value, or the insertion
// point inside "tags", and returns a plan for splicing a nonce into event.
// ok is false when neither a nonce tag nor a tags array could be found —
// the malformed-event case from spec §7 kind 5.
func buildNoncePlan(evt []byte) (plan noncePlan, ok bool) {
	if idx := bytes.Index(evt, tokNonce); idx >= 0 {
		return planReplaceNonce(evt, idx)
	}
	return planInsertNonce(evt)
}

// planReplaceNonce builds a plan that overwrites the value following an
// existing "nonce" token found at tokIdx. The token shows up in two shapes:
// an object field ("nonce": "N") or, the common NIP-13 case, a tag array
// element (["nonce","N"]) where a comma separates the token from its value
// instead of a colon. Either way, the separator is whichever of ':' or ','
// comes first right after the token — it must not search arbitrarily far
// into the document, or it can walk past the real value and land on an
// unrelated field's colon (e.g. "created_at" later in the object).
func planReplaceNonce(evt []byte, tokIdx int) (noncePlan, bool) {
	pos := tokIdx + len(tokNonce)
	for pos < len(evt) && (evt[pos] == ' ' || evt[pos] == '\t') {
		pos++
	}
	if pos >= len(evt) || (evt[pos] != ':' && evt[pos] != ',') {
		return noncePlan{}, false
	}

	valueStart := pos + 1
	for valueStart < len(evt) && (evt[valueStart] == ' ' || evt[valueStart] == '\t') {
		valueStart++
	}
	if valueStart >= len(evt) {
		return noncePlan{}, false
	}

	var valueEnd int
	if evt[valueStart] == '"' {
		closeQuote := bytes.IndexByte(evt[valueStart+1:], '"')
		if closeQuote < 0 {
			return noncePlan{}, false
		}
		valueEnd = valueStart + 1 + closeQuote + 1
	} else {
		valueEnd = valueStart
		for valueEnd < len(evt) && evt[valueEnd] != ',' && evt[valueEnd] != ']' && evt[valueEnd] != '}' {
			valueEnd++
		}
	}

	return noncePlan{
		prefix:    evt[:valueStart],
		wrapOpen:  []byte(`"`),
		wrapClose: []byte(`"`),
		suffix:    evt[valueEnd:],
	}, true
}

// planInsertNonce builds a plan that inserts a fresh ["nonce","N"] tag as
// the first element of the "tags" array.
func planInsertNonce(evt []byte) (noncePlan, bool) {
	tagsIdx := bytes.Index(evt, tokTags)
	if tagsIdx < 0 {
		return noncePlan{}, false
	}
	bracket := bytes.IndexByte(evt[tagsIdx:], '[')
	if bracket < 0 {
		return noncePlan{}, false
	}
	arrayOpen := tagsIdx + bracket

	rest := arrayOpen + 1
	scan := rest
	for scan < len(evt) && (evt[scan] == ' ' || evt[scan] == '\t' || evt[scan] == '\n' || evt[scan] == '\r') {
		scan++
	}
	nonEmpty := scan < len(evt) && evt[scan] != ']'

	wrapClose := []byte(`"]`)
	if nonEmpty {
		wrapClose = []byte(`"],`)
	}

	return noncePlan{
		prefix:    evt[:arrayOpen+1],
		wrapOpen:  []byte(`["nonce","`),
		wrapClose: wrapClose,
		suffix:    evt[arrayOpen+1:],
	}, true
}

// SetNonce returns event with its nonce tag set to nonce. If the event has
// neither a "nonce" tag nor a "tags" array to insert one into, it returns an
// unchanged copy. Comparing the returned bytes against the input is not a
// reliable way to detect that case — a nonce whose existing value already
// renders as "N" produces byte-identical output too. Callers that need to
// detect the malformed-event case (spec §7 kind 5) should use
// NewPlanner(evt).Valid() instead.
func SetNonce(evt []byte, nonce uint64) []byte {
	plan, ok := buildNoncePlan(evt)
	if !ok {
		return append([]byte(nil), evt...)
	}
	return plan.render(nil, nonce)
}

// Planner precomputes the nonce splice point once and renders many nonce
// attempts against a reused buffer, for the search engine's hot loop.
type Planner struct {
	plan noncePlan
	ok   bool
}

// NewPlanner analyzes event once for a mining session.
func NewPlanner(evt []byte) Planner {
	plan, ok := buildNoncePlan(evt)
	return Planner{plan: plan, ok: ok}
}

// Valid reports whether event had a splice point at all.
func (p Planner) Valid() bool { return p.ok }

// Render writes event with nonce spliced in, into dst's backing array
// (growing it if necessary), and returns the result.
func (p Planner) Render(dst []byte, nonce uint64) []byte {
	return p.plan.render(dst, nonce)
}

// SetTimestamp returns event with its "created_at" value replaced by ts. If
// no "created_at" field exists, it returns an unchanged copy.
func SetTimestamp(evt []byte, ts int64) []byte {
	start, end, ok := locateCreatedAt(evt)
	if !ok {
		return append([]byte(nil), evt...)
	}
	out := make([]byte, 0, len(evt)+20)
	out = append(out, evt[:start]...)
	out = strconv.AppendInt(out, ts, 10)
	out = append(out, evt[end:]...)
	return out
}

// IncrementTimestamp returns event with its "created_at" value replaced by
// the existing value plus delta. If no "created_at" field exists, it
// returns an unchanged copy.
func IncrementTimestamp(evt []byte, delta int64) []byte {
	start, end, ok := locateCreatedAt(evt)
	if !ok {
		return append([]byte(nil), evt...)
	}
	current, err := strconv.ParseInt(string(evt[start:end]), 10, 64)
	if err != nil {
		return append([]byte(nil), evt...)
	}
	return SetTimestamp(evt, current+delta)
}

// locateCreatedAt finds the half-open byte range of the created_at value
// (an unquoted integer terminated by ',', '}', ']' or a space).
func locateCreatedAt(evt []byte) (start, end int, ok bool) {
	tokIdx := bytes.Index(evt, tokCreatedAt)
	if tokIdx < 0 {
		return 0, 0, false
	}
	colon := bytes.IndexByte(evt[tokIdx:], ':')
	if colon < 0 {
		return 0, 0, false
	}
	start = tokIdx + colon + 1
	for start < len(evt) && (evt[start] == ' ' || evt[start] == '\t') {
		start++
	}
	end = start
	for end < len(evt) && evt[end] != ',' && evt[end] != '}' && evt[end] != ']' && evt[end] != ' ' {
		end++
	}
	return start, end, true
}
