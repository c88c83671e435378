package region

import (
	"sync/atomic"

	"zipstate/pkg/domain"
)

// PostalLabel names the postal code domain in index error messages.
const PostalLabel = "postal code"

var postalIndex atomic.Pointer[Index]

// PostalIndex returns the process-wide index over the canonical postal
// table. Built lazily on first access; concurrent first callers may each
// build their own copy and the first publish wins, which is safe because
// the build is a pure function of a constant table. Panics if the
// canonical table fails validation.
func PostalIndex() *Index {
	if ix := postalIndex.Load(); ix != nil {
		return ix
	}
	ix, err := NewIndex(PostalLabel, PostalTable())
	if err != nil {
		panic("region: canonical postal table is malformed: " + err.Error())
	}
	postalIndex.CompareAndSwap(nil, ix)
	return postalIndex.Load()
}

// PostalTable returns a fresh copy of the canonical ZIP code table:
// 50 states plus DC, in display-name order. Range bounds follow USPS
// three-digit prefix allocations; states whose allocation is a single
// two-digit block are encoded as prefix rules.
//
// The table is static reference data. Curating it, and keeping rule
// ranges disjoint across states, is the author's responsibility; the
// engine resolves deterministically but does not detect overlaps.
func PostalTable() []TableEntry {
	return []TableEntry{
		{domain.StateAlabama, rules(between("35", "36"))},
		{domain.StateAlaska, rules(between("995", "999"))},
		{domain.StateArizona, rules(between("85", "86"))},
		{domain.StateArkansas, rules(between("716", "729"))},
		{domain.StateCalifornia, rules(between("900", "961"))},
		{domain.StateColorado, rules(between("80", "81"))},
		{domain.StateConnecticut, rules(prefix("06"))},
		{domain.StateDelaware, rules(between("197", "199"))},
		{domain.StateDC, rules(between("200", "205"))},
		{domain.StateFlorida, rules(between("32", "34"))},
		{domain.StateGeorgia, rules(between("30", "31"), between("398", "399"))},
		{domain.StateHawaii, rules(between("967", "968"))},
		{domain.StateIdaho, rules(between("832", "838"))},
		{domain.StateIllinois, rules(between("60", "62"))},
		{domain.StateIndiana, rules(between("46", "47"))},
		{domain.StateIowa, rules(between("50", "52"))},
		{domain.StateKansas, rules(between("66", "67"))},
		{domain.StateKentucky, rules(between("40", "42"))},
		{domain.StateLouisiana, rules(between("700", "715"))},
		{domain.StateMaine, rules(between("039", "049"))},
		{domain.StateMaryland, rules(between("206", "219"))},
		{domain.StateMassachusetts, rules(between("010", "027"))},
		{domain.StateMichigan, rules(between("48", "49"))},
		{domain.StateMinnesota, rules(between("550", "567"))},
		{domain.StateMississippi, rules(between("386", "397"))},
		{domain.StateMissouri, rules(between("63", "65"))},
		{domain.StateMontana, rules(prefix("59"))},
		{domain.StateNebraska, rules(between("68", "69"))},
		{domain.StateNevada, rules(between("889", "898"))},
		{domain.StateNewHampshire, rules(between("030", "038"))},
		{domain.StateNewJersey, rules(between("07", "08"))},
		{domain.StateNewMexico, rules(between("870", "884"))},
		{domain.StateNewYork, rules(between("10", "14"))},
		{domain.StateNorthCarolina, rules(between("27", "28"))},
		{domain.StateNorthDakota, rules(prefix("58"))},
		{domain.StateOhio, rules(between("43", "45"))},
		{domain.StateOklahoma, rules(between("73", "74"))},
		{domain.StateOregon, rules(prefix("97"))},
		{domain.StatePennsylvania, rules(between("150", "196"))},
		{domain.StateRhodeIsland, rules(between("028", "029"))},
		{domain.StateSouthCarolina, rules(prefix("29"))},
		{domain.StateSouthDakota, rules(prefix("57"))},
		{domain.StateTennessee, rules(between("370", "385"))},
		{domain.StateTexas, rules(between("75", "79"), prefix("885"))},
		{domain.StateUtah, rules(prefix("84"))},
		{domain.StateVermont, rules(between("050", "059"))},
		{domain.StateVirginia, rules(between("220", "246"))},
		{domain.StateWashington, rules(between("980", "994"))},
		{domain.StateWestVirginia, rules(between("247", "268"))},
		{domain.StateWisconsin, rules(between("53", "54"))},
		{domain.StateWyoming, rules(between("820", "831"))},
	}
}

// prefix and between build rule literals for the canonical tables.
// NewIndex re-validates every bound, so authoring mistakes still abort
// the build.
func prefix(start string) CodeRule {
	return CodeRule{kind: KindPrefix, start: start}
}

func between(start, end string) CodeRule {
	return CodeRule{kind: KindRange, start: start, end: end}
}

func rules(rs ...CodeRule) []CodeRule {
	return rs
}
