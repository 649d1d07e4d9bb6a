package report

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/soderasen-au/go-common/util"
)

type AuditCmd string

const (
	AUDIT_CMD_PARSE    AuditCmd = "parse"
	AUDIT_CMD_GENERATE AuditCmd = "generate"
	AUDIT_CMD_CONVERT  AuditCmd = "convert"
)

const (
	AUDIT_RESULT_OK    = "ok"
	AUDIT_RESULT_ERROR = "error"
)

// AuditRecord is one line of the audit trail, one per handled upload.
type AuditRecord struct {
	Timestamp   string   `csv:"timestamp"`
	RequestID   string   `csv:"request_id"`
	RemoteAddr  string   `csv:"remote_addr"`
	Cmd         AuditCmd `csv:"cmd"`
	FileName    string   `csv:"file_name"`
	FileSize    int64    `csv:"file_size"`
	TotalRows   int      `csv:"total_rows"`
	OutputBytes int      `csv:"output_bytes"`
	Result      string   `csv:"result"`
	Message     string   `csv:"message"`
}

func NewAuditRecord(cmd AuditCmd, requestID, remoteAddr, fileName string, fileSize int64) AuditRecord {
	return AuditRecord{
		Timestamp:  time.Now().Format(time.RFC3339),
		RequestID:  requestID,
		RemoteAddr: remoteAddr,
		Cmd:        cmd,
		FileName:   fileName,
		FileSize:   fileSize,
		Result:     AUDIT_RESULT_OK,
	}
}

// Fail marks the record as failed with the message returned to the client.
func (r *AuditRecord) Fail(msg string) {
	r.Result = AUDIT_RESULT_ERROR
	r.Message = msg
}

// AuditLog appends AuditRecords to a CSV file. The header is written
// once, when the file is empty. Safe for concurrent use.
type AuditLog struct {
	fileName string
	fd       *os.File
	mu       sync.Mutex
}

func NewAuditLog(fn string) (*AuditLog, *util.Result) {
	auditLog := &AuditLog{}
	if res := auditLog.OpenFile(fn); res != nil {
		return nil, res.With("OpenFile")
	}
	return auditLog, nil
}

func (audit *AuditLog) OpenFile(fn string) *util.Result {
	f, err := os.OpenFile(fn, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return util.Error("OpenFile", err)
	}
	audit.fileName = fn
	audit.fd = f
	return nil
}

func (audit *AuditLog) FileName() string {
	return audit.fileName
}

func (audit *AuditLog) Record(r AuditRecord) *util.Result {
	audit.mu.Lock()
	defer audit.mu.Unlock()

	if audit.fd == nil {
		return util.MsgError("Record", "audit log is closed")
	}
	info, err := audit.fd.Stat()
	if err != nil {
		return util.Error("Stat", err)
	}

	records := []AuditRecord{r}
	if info.Size() == 0 {
		err = gocsv.Marshal(records, audit.fd)
	} else {
		err = gocsv.MarshalWithoutHeaders(records, audit.fd)
	}
	if err != nil {
		return util.Error("WriteRecord", err)
	}
	return nil
}

func (audit *AuditLog) Close() {
	audit.mu.Lock()
	defer audit.mu.Unlock()
	if audit.fd != nil {
		audit.fd.Close()
		audit.fd = nil
	}
}

// ReadAuditRecords loads an audit trail written by AuditLog.
func ReadAuditRecords(r io.Reader) ([]AuditRecord, *util.Result) {
	records := make([]AuditRecord, 0)
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return nil, util.Error("Unmarshal", err)
	}
	return records, nil
}
