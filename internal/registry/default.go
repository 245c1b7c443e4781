package registry

// DefaultEntries is the built-in server list used when no configuration file
// lists servers: the DHAKA-FLIX h5ai mirrors.
func DefaultEntries() []Entry {
	return []Entry{
		{Name: "DHAKA-FLIX-7", URL: "http://172.16.50.7/DHAKA-FLIX-7/", Categories: SplitCategories("Movies")},
		{Name: "DHAKA-FLIX-8", URL: "http://172.16.50.8/DHAKA-FLIX-8/", Categories: SplitCategories("Series, Software")},
		{Name: "DHAKA-FLIX-9", URL: "http://172.16.50.9/DHAKA-FLIX-9/", Categories: SplitCategories("Series")},
		{Name: "DHAKA-FLIX-12", URL: "http://172.16.50.12/DHAKA-FLIX-12/", Categories: SplitCategories("Series")},
		{Name: "DHAKA-FLIX-14", URL: "http://172.16.50.14/DHAKA-FLIX-14/", Categories: SplitCategories("Movies, Series")},
	}
}

// Default returns the registry built from DefaultEntries.
func Default() *Registry {
	r, err := New(DefaultEntries())
	if err != nil {
		panic("registry: invalid built-in server list: " + err.Error())
	}
	return r
}
