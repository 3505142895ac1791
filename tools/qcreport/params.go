package qcreport

import (
	"fmt"
	"sort"
	"strings"

	"github.com/maruel/natural"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Param is one row of a report's parameter table
type Param struct {
	Key   string
	Value string
}

// SnakeToTitle turns "phred_offset" into "Phred Offset"
func SnakeToTitle(s string) string {
	// Casers keep state between calls, so each call gets its own
	caser := cases.Title(language.English)
	words := strings.Split(s, "_")
	for i, w := range words {
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}

// NiceParams title-cases parameter names and orders them naturally ("Trim 2" before "Trim 10")
func NiceParams(params map[string]any) []Param {
	out := make([]Param, 0, len(params))
	for k, v := range params {
		out = append(out, Param{Key: SnakeToTitle(k), Value: fmt.Sprint(v)})
	}
	sort.Slice(out, func(i, j int) bool {
		return natural.Less(out[i].Key, out[j].Key)
	})
	return out
}
