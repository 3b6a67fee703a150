// Package regioncode maps region names to the short codes embedded in
// membership IDs.
//
// The table is fixed: already-issued IDs depend on it, so entries must never
// be renamed or removed. Both the Amharic registry spellings and the English
// names are accepted; anything unrecognized falls back to "OTH" so an
// unlisted region can never block a registration.
package regioncode

import "strings"

// Fallback is the code used for unrecognized regions.
const Fallback = "OTH"

var byName = map[string]string{
	// Amharic registry spellings
	"አማራ":              "AMH",
	"ኦሮሚያ":             "ORO",
	"ትግራይ":             "TIG",
	"አዲስ አበባ":          "AA",
	"ድሬዳዋ":             "DD",
	"ደቡብ ኢትዮጵያ":        "SOET",
	"ደቡብ ምዕራብ ኢትዮጵያ":   "SWET",
	"ሐረር":              "HAR",
	"አፋር":              "AFR",
	"ሶማሌ":              "SOM",
	"ጋምቤላ":             "GAM",
	"ቤኒሻንጉል ጉሙዝ":       "BEN",
	"ሲዳማ":              "SID",

	// English names
	"amhara":               "AMH",
	"oromia":               "ORO",
	"tigray":               "TIG",
	"addis ababa":          "AA",
	"dire dawa":            "DD",
	"south ethiopia":       "SOET",
	"south west ethiopia":  "SWET",
	"harari":               "HAR",
	"afar":                 "AFR",
	"somali":               "SOM",
	"gambela":              "GAM",
	"benishangul-gumuz":    "BEN",
	"sidama":               "SID",
}

// Code returns the short code for a region name, or Fallback when the
// region is not in the table.
func Code(region string) string {
	r := strings.TrimSpace(region)
	if c, ok := byName[r]; ok {
		return c
	}
	if c, ok := byName[strings.ToLower(r)]; ok {
		return c
	}
	return Fallback
}

// Known reports whether the region maps to a real code (not the fallback).
func Known(region string) bool {
	return Code(region) != Fallback
}

// Regions returns the Amharic registry spellings in display order, for
// building the registration form's region selector.
func Regions() []string {
	return []string{
		"አዲስ አበባ", "አማራ", "ኦሮሚያ", "ትግራይ", "ደቡብ ኢትዮጵያ", "ደቡብ ምዕራብ ኢትዮጵያ",
		"ሶማሌ", "ጋምቤላ", "ሐረር", "ድሬዳዋ", "ቤኒሻንጉል ጉሙዝ", "ሲዳማ", "አፋር",
	}
}
