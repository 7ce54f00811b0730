// Package importer parses saved copies of the host site's trades table
// into raw trade records. It deliberately does no cleanup beyond
// trimming cell text: parsing and defensive fallbacks live in the
// metrics engine, and rows missing an asset or realized value are kept
// here and filtered at display time.
package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/propdeck/challenge-backend/pkg/types"
	"go.uber.org/zap"
)

// tradeColumns is the expected cell order of one table row.
const tradeColumns = 12

// Importer parses exported trade tables.
type Importer struct {
	logger *zap.Logger
}

// NewImporter creates an importer.
func NewImporter(logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{logger: logger}
}

// ParseTradesHTML extracts raw trades from a saved HTML document
// containing the site's trades table. Rows with too few cells are
// skipped and logged rather than failing the whole import.
func (im *Importer) ParseTradesHTML(r io.Reader) ([]types.RawTrade, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var trades []types.RawTrade

	doc.Find("table tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() == 0 {
			// Header row.
			return
		}
		if cells.Length() < tradeColumns {
			im.logger.Warn("skipping short table row",
				zap.Int("row", i),
				zap.Int("cells", cells.Length()))
			return
		}

		text := func(idx int) string {
			return strings.TrimSpace(cells.Eq(idx).Text())
		}

		trades = append(trades, types.RawTrade{
			RowIndex:   len(trades),
			Asset:      text(0),
			Side:       text(1),
			DateStart:  text(2),
			DateEnd:    text(3),
			Entry:      text(4),
			InitialSL:  text(5),
			MaxTP:      text(6),
			MaxRR:      text(7),
			Size:       text(8),
			CloseAvg:   text(9),
			Realized:   text(10),
			Commission: text(11),
		})
	})

	im.logger.Info("parsed trades table", zap.Int("trades", len(trades)))
	return trades, nil
}
