package port

import (
	"context"
	"io"

	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/entity"
)

// Notifier delivers an in-app notification to a user
type Notifier interface {
	Notify(ctx context.Context, userID, message, relatedEntityType string, relatedEntityID int64) error
}

// MessageSender pushes a text message to a Lark user
type MessageSender interface {
	SendMessage(ctx context.Context, openID, content string) error
}

// RowError reports a spreadsheet row that could not be read.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ApplicationRow is a loan application read from spreadsheet row Row.
type ApplicationRow struct {
	Row         int
	Application *entity.LoanApplication
}

// ClientRow is a client read from spreadsheet row Row.
type ClientRow struct {
	Row    int
	Client *entity.Client
}

// SpreadsheetCodec reads and writes the Excel workbooks used for bulk
// import and export.
type SpreadsheetCodec interface {
	WriteApplications(w io.Writer, apps []*entity.LoanApplication) error
	ReadApplications(r io.Reader) ([]ApplicationRow, []RowError, error)
	WriteClients(w io.Writer, clients []*entity.Client) error
	ReadClients(r io.Reader) ([]ClientRow, []RowError, error)
}
