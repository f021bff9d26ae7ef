package codetable

var defaultPorts = []Entry{
	{"LOS ANGELES", "2704"},
	{"LONG BEACH", "2709"},
	{"LA", "2704"},
	{"LAX", "2720"},
	{"YANTIAN", "58201"},
	{"YANTIAN PT", "58201"},
}

// Y309 is a FIRMS code observed on ZIM arrival notices.
var defaultCarriers = []Entry{
	{"ZIM", "ZIMU"},
	{"ZIMU", "ZIMU"},
	{"MATSON", "MATS"},
	{"MATS", "MATS"},
	{"COSCO", "COSU"},
	{"COSU", "COSU"},
	{"ONE", "ONEY"},
	{"ONEY", "ONEY"},
	{"Y309", "ZIMU"},
}

// Longer names come before their shorter substrings.
var defaultCountries = []Entry{
	{"PEOPLES REPUBLIC OF CHINA", "CN"},
	{"CHINA", "CN"},
	{"VIET NAM", "VN"},
	{"VIETNAM", "VN"},
	{"TAIWAN", "TW"},
	{"HONG KONG", "HK"},
	{"JAPAN", "JP"},
	{"SOUTH KOREA", "KR"},
	{"KOREA", "KR"},
	{"INDIA", "IN"},
	{"THAILAND", "TH"},
	{"MALAYSIA", "MY"},
	{"INDONESIA", "ID"},
	{"CAMBODIA", "KH"},
	{"BANGLADESH", "BD"},
	{"MEXICO", "MX"},
	{"CANADA", "CA"},
	{"UNITED STATES", "US"},
	{"USA", "US"},
	{"GERMANY", "DE"},
	{"ITALY", "IT"},
}

// Default returns the built-in code tables.
func Default() *Tables {
	return &Tables{
		Ports:     NewTable(defaultPorts),
		Carriers:  NewTable(defaultCarriers),
		Countries: NewTable(defaultCountries),
	}
}
