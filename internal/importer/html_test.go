package importer_test

import (
	"strings"
	"testing"

	"github.com/propdeck/challenge-backend/internal/importer"
	"go.uber.org/zap"
)

const sampleTable = `
<html><body>
<table>
  <tr>
    <th>Asset</th><th>Side</th><th>Opened</th><th>Closed</th><th>Entry</th>
    <th>SL</th><th>TP</th><th>RR</th><th>Size</th><th>Close</th><th>Realized</th><th>Comm</th>
  </tr>
  <tr>
    <td> EURUSD </td><td>buy</td><td>6/06/25, 2:03 AM</td><td>6/06/25, 4:33 AM</td>
    <td>1.0850</td><td>1.0800</td><td>1.0950</td><td>2</td><td>1.5</td>
    <td>1.0900</td><td>$75.00</td><td>$2.10</td>
  </tr>
  <tr>
    <td>XAUUSD</td><td>sell</td><td>6/07/25, 9:00 AM</td><td>6/07/25, 1:15 PM</td>
    <td>2300</td><td>2310</td><td>2280</td><td>Loss</td><td>0.5</td>
    <td>2305</td><td>-$25.00</td><td>$1.00</td>
  </tr>
  <tr><td>broken row</td><td>too few cells</td></tr>
</table>
</body></html>`

func TestParseTradesHTML(t *testing.T) {
	im := importer.NewImporter(zap.NewNop())

	trades, err := im.ParseTradesHTML(strings.NewReader(sampleTable))
	if err != nil {
		t.Fatalf("ParseTradesHTML failed: %v", err)
	}

	if len(trades) != 2 {
		t.Fatalf("expected 2 trades (short row skipped), got %d", len(trades))
	}

	first := trades[0]
	if first.RowIndex != 0 {
		t.Errorf("row index = %d, want 0", first.RowIndex)
	}
	if first.Asset != "EURUSD" {
		t.Errorf("asset = %q, want EURUSD (trimmed)", first.Asset)
	}
	if first.Realized != "$75.00" || first.MaxRR != "2" {
		t.Errorf("unexpected cell mapping: %+v", first)
	}

	second := trades[1]
	if second.RowIndex != 1 || second.Side != "sell" || second.MaxRR != "Loss" {
		t.Errorf("unexpected second trade: %+v", second)
	}
}

func TestParseTradesHTMLEmptyDocument(t *testing.T) {
	im := importer.NewImporter(zap.NewNop())

	trades, err := im.ParseTradesHTML(strings.NewReader("<html><body><p>no table</p></body></html>"))
	if err != nil {
		t.Fatalf("ParseTradesHTML failed: %v", err)
	}
	if len(trades) != 0 {
		t.Errorf("expected no trades, got %d", len(trades))
	}
}
