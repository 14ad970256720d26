package prospector

import (
	"strings"

	"github.com/coldreach/prospector/pkg/models"
)

// csvFields is the fixed export column order.
var csvFields = []string{"name", "phone", "website", "email", "rating", "reviews"}

// CSV serializes a result snapshot to comma-separated text: an unquoted
// header row followed by one row per record with every field
// double-quoted and embedded quotes doubled. An empty snapshot yields an
// empty string; export is a no-op in that case, not an error.
//
// encoding/csv is deliberately not used here: it quotes fields only when
// necessary, and downstream spreadsheet imports rely on every data field
// being quoted.
func CSV(records []models.ResultRecord) string {
	if len(records) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(strings.Join(csvFields, ","))
	b.WriteString("\n")

	for _, r := range records {
		row := []*string{r.Name, r.Phone, r.Website, r.Email, r.Rating, r.Reviews}
		for i, field := range row {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(quote(models.FieldOrEmpty(field)))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func quote(v string) string {
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}
