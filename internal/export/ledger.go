package export

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tealeg/xlsx"

	"github.com/akarpov/teleshop/internal/shop"
)

type ExportLogHook struct{}

func (h *ExportLogHook) Fire(entry *logrus.Entry) error {
	entry.Message = "Export: " + entry.Message
	return nil
}

func (h *ExportLogHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// OrderRecord is one committed order as it appears in the ledger workbook.
type OrderRecord struct {
	OrderID      uint
	CreatedAt    time.Time
	TelegramID   int64
	Phone        string
	Address      string
	Comment      string
	DeliveryDate string
	TotalPrice   string
	Status       string
	Items        string
	PaymentID    string
}

var headers = []string{
	"Order ID", "Created At", "Telegram ID", "Phone", "Address", "Comment",
	"Delivery Date", "Total", "Status", "Items", "Payment ID",
}

const sheetName = "Orders"

// FormatItems renders a cart snapshot as a single "title x qty" list cell.
func FormatItems(items []shop.OrderItemSnapshot) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%s x%d", item.Title, item.Quantity))
	}
	return strings.Join(parts, "; ")
}

// OrderLedger appends committed orders to an xlsx workbook, one row per
// order. The workbook is created with a header row on first use.
type OrderLedger struct {
	mu   sync.Mutex
	path string
	log  *logrus.Entry
}

func NewOrderLedger(path string, log *logrus.Entry) *OrderLedger {
	return &OrderLedger{
		path: path,
		log:  log,
	}
}

func (l *OrderLedger) AppendOrder(record OrderRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	file, sheet, err := l.openSheet()
	if err != nil {
		return err
	}

	row := sheet.AddRow()
	cells := []string{
		fmt.Sprintf("%d", record.OrderID),
		record.CreatedAt.Format("2006-01-02 15:04:05"),
		fmt.Sprintf("%d", record.TelegramID),
		record.Phone,
		record.Address,
		record.Comment,
		record.DeliveryDate,
		record.TotalPrice,
		record.Status,
		record.Items,
		record.PaymentID,
	}
	for _, value := range cells {
		row.AddCell().SetString(value)
	}

	if err := file.Save(l.path); err != nil {
		return fmt.Errorf("failed to save orders ledger - %s", err)
	}

	l.log.Debugf("AppendOrder: order %d appended to %s", record.OrderID, l.path)
	return nil
}

func (l *OrderLedger) openSheet() (*xlsx.File, *xlsx.Sheet, error) {
	if _, err := os.Stat(l.path); err != nil {
		if !os.IsNotExist(err) {
			return nil, nil, err
		}

		file := xlsx.NewFile()
		sheet, err := file.AddSheet(sheetName)
		if err != nil {
			return nil, nil, err
		}

		headerRow := sheet.AddRow()
		for _, header := range headers {
			headerRow.AddCell().SetString(header)
		}
		return file, sheet, nil
	}

	file, err := xlsx.OpenFile(l.path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open orders ledger - %s", err)
	}

	sheet, ok := file.Sheet[sheetName]
	if !ok {
		sheet, err = file.AddSheet(sheetName)
		if err != nil {
			return nil, nil, err
		}
	}
	return file, sheet, nil
}
