package parser

import (
	"strings"

	"github.com/tidwall/gjson"
)

// ParseAssetSearch returns the fundamentals page of the first share ("Aktie") in an
// onvista asset search response
func ParseAssetSearch(body string) (string, bool) {
	var link string
	gjson.Get(body, "onvista.results.asset").ForEach(func(_, asset gjson.Result) bool {
		if asset.Get("type").String() != "Aktie" {
			return true
		}
		link = strings.ReplaceAll(asset.Get("snapshotlink").String(), "/aktien/", "/aktien/fundamental/")
		return false
	})
	return link, link != ""
}
