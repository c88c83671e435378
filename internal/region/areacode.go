package region

import (
	"sync/atomic"

	"zipstate/pkg/domain"
)

// AreaCodeLabel names the area code domain in index error messages.
const AreaCodeLabel = "area code"

var areaCodeIndex atomic.Pointer[Index]

// AreaCodeIndex returns the process-wide index over the canonical NANP
// area code table. Same lazy first-writer-wins publication as
// PostalIndex; panics if the canonical table fails validation.
func AreaCodeIndex() *Index {
	if ix := areaCodeIndex.Load(); ix != nil {
		return ix
	}
	ix, err := NewIndex(AreaCodeLabel, AreaCodeTable())
	if err != nil {
		panic("region: canonical area code table is malformed: " + err.Error())
	}
	areaCodeIndex.CompareAndSwap(nil, ix)
	return areaCodeIndex.Load()
}

// AreaCodeTable returns a fresh copy of the canonical NANP area code
// table: 50 states plus DC, in display-name order. Every rule is an
// exact three-digit prefix; area codes never carry extensions, so prefix
// matching degenerates to equality.
func AreaCodeTable() []TableEntry {
	return []TableEntry{
		{domain.StateAlabama, codes("205", "251", "256", "334", "938")},
		{domain.StateAlaska, codes("907")},
		{domain.StateArizona, codes("480", "520", "602", "623", "928")},
		{domain.StateArkansas, codes("479", "501", "870")},
		{domain.StateCalifornia, codes(
			"209", "213", "310", "323", "408", "415", "510", "530", "559",
			"562", "619", "626", "650", "661", "707", "714", "760", "805",
			"818", "831", "858", "909", "916", "925", "949", "951")},
		{domain.StateColorado, codes("303", "719", "970")},
		{domain.StateConnecticut, codes("203", "860")},
		{domain.StateDelaware, codes("302")},
		{domain.StateDC, codes("202")},
		{domain.StateFlorida, codes(
			"239", "305", "321", "352", "386", "407", "561", "727", "772",
			"813", "850", "863", "904", "941", "954")},
		{domain.StateGeorgia, codes("229", "404", "478", "678", "706", "770", "912")},
		{domain.StateHawaii, codes("808")},
		{domain.StateIdaho, codes("208")},
		{domain.StateIllinois, codes("217", "309", "312", "618", "630", "708", "773", "815", "847")},
		{domain.StateIndiana, codes("219", "260", "317", "574", "765", "812")},
		{domain.StateIowa, codes("319", "515", "563", "641", "712")},
		{domain.StateKansas, codes("316", "620", "785", "913")},
		{domain.StateKentucky, codes("270", "502", "606", "859")},
		{domain.StateLouisiana, codes("225", "318", "337", "504", "985")},
		{domain.StateMaine, codes("207")},
		{domain.StateMaryland, codes("301", "410", "443")},
		{domain.StateMassachusetts, codes("339", "351", "413", "508", "617", "774", "781", "857", "978")},
		{domain.StateMichigan, codes("231", "248", "269", "313", "517", "586", "616", "734", "810", "906", "989")},
		{domain.StateMinnesota, codes("218", "320", "507", "612", "651", "763", "952")},
		{domain.StateMississippi, codes("228", "601", "662")},
		{domain.StateMissouri, codes("314", "417", "573", "636", "660", "816")},
		{domain.StateMontana, codes("406")},
		{domain.StateNebraska, codes("308", "402")},
		{domain.StateNevada, codes("702", "775")},
		{domain.StateNewHampshire, codes("603")},
		{domain.StateNewJersey, codes("201", "609", "732", "856", "908", "973")},
		{domain.StateNewMexico, codes("505", "575")},
		{domain.StateNewYork, codes(
			"212", "315", "516", "518", "585", "607", "631", "646", "716",
			"718", "845", "914", "917")},
		{domain.StateNorthCarolina, codes("252", "336", "704", "828", "910", "919")},
		{domain.StateNorthDakota, codes("701")},
		{domain.StateOhio, codes("216", "330", "419", "440", "513", "614", "740", "937")},
		{domain.StateOklahoma, codes("405", "580", "918")},
		{domain.StateOregon, codes("503", "541", "971")},
		{domain.StatePennsylvania, codes("215", "412", "570", "610", "717", "724", "814", "878")},
		{domain.StateRhodeIsland, codes("401")},
		{domain.StateSouthCarolina, codes("803", "843", "864")},
		{domain.StateSouthDakota, codes("605")},
		{domain.StateTennessee, codes("423", "615", "731", "865", "901", "931")},
		{domain.StateTexas, codes(
			"210", "214", "254", "281", "325", "361", "409", "430", "432",
			"512", "682", "713", "806", "817", "830", "903", "915", "936",
			"940", "956", "972", "979")},
		{domain.StateUtah, codes("435", "801")},
		{domain.StateVermont, codes("802")},
		{domain.StateVirginia, codes("276", "434", "540", "703", "757", "804")},
		{domain.StateWashington, codes("206", "253", "360", "425", "509")},
		{domain.StateWestVirginia, codes("304")},
		{domain.StateWisconsin, codes("262", "414", "608", "715", "920")},
		{domain.StateWyoming, codes("307")},
	}
}

func codes(cs ...string) []CodeRule {
	out := make([]CodeRule, len(cs))
	for i, c := range cs {
		out[i] = prefix(c)
	}
	return out
}
