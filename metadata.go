package mmdbwriter

// Metadata holds the fields written to the metadata section of the
// finished file. NodeCount and RecordSize are derived by the Database on
// every mutation (see Database.recompute) and should not be set directly
// in normal use; tests may override RecordSize to force any of the three
// record widths ahead of a single WriteTo call.
type Metadata struct {
	NodeCount                uint32
	RecordSize               uint16
	IPVersion                uint16
	DatabaseType             string
	Languages                []string
	BinaryFormatMajorVersion uint16
	BinaryFormatMinorVersion uint16
	BuildEpoch               uint64
	Description              map[string]string
}

// toMap renders the metadata as the Map the ValueEncoder writes. Field
// names on the wire are exactly these snake_case strings.
func (m Metadata) toMap() Map {
	languages := make(Array, len(m.Languages))
	for i, lang := range m.Languages {
		languages[i] = String(lang)
	}

	description := make(Map, len(m.Description))
	for k, v := range m.Description {
		description[k] = String(v)
	}

	return Map{
		"node_count":                  Uint32(m.NodeCount),
		"record_size":                 Uint16(m.RecordSize),
		"ip_version":                  Uint16(m.IPVersion),
		"database_type":               String(m.DatabaseType),
		"languages":                   languages,
		"binary_format_major_version": Uint16(m.BinaryFormatMajorVersion),
		"binary_format_minor_version": Uint16(m.BinaryFormatMinorVersion),
		"build_epoch":                 Uint64(m.BuildEpoch),
		"description":                 description,
	}
}
