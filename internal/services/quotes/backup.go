package quotes

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"github.com/ternarybob/stockanalyzer/internal/common"
	"github.com/ternarybob/stockanalyzer/internal/models"
)

// backupDateLayout is the dd.MM.yyyy date appended to the backup URL
const backupDateLayout = "02.01.2006"

// IndexBackup reads index closes from a secondary JSON endpoint per index
// (StockIndex.BackupURL), used when the quote source has no index data
type IndexBackup struct {
	client *resty.Client
}

// NewIndexBackup creates a backup source using client for requests
func NewIndexBackup(client *resty.Client) *IndexBackup {
	return &IndexBackup{client: client}
}

// CloseOn returns the close of index on date. The endpoint answers
// {"close": "12.345,67"} for BackupURL + "dd.MM.yyyy".
func (b *IndexBackup) CloseOn(ctx context.Context, index models.StockIndex, date time.Time) (float64, error) {
	if index.BackupURL == "" {
		return 0, fmt.Errorf("index %s has no backup url", index.Symbol)
	}

	url := index.BackupURL + date.Format(backupDateLayout)
	resp, err := b.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return 0, fmt.Errorf("backup index request failed: %w", err)
	}
	if !resp.IsSuccess() {
		return 0, fmt.Errorf("backup index request %s: status %d", url, resp.StatusCode())
	}

	raw := gjson.GetBytes(resp.Body(), "close")
	if !raw.Exists() {
		return 0, fmt.Errorf("backup index response for %s has no close", url)
	}
	if raw.Type == gjson.Number {
		return raw.Float(), nil
	}
	return common.ParseGermanNumber(raw.String())
}
