// ABOUTME: System endpoint types: health, statistics, access logs and log imports
// ABOUTME: Field names follow the backend's JSON payloads

package models

// HealthResponse is returned by /health
type HealthResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
}

// Statistics is returned by /statistics
type Statistics struct {
	Success      bool  `json:"success"`
	Repositories int64 `json:"repositories"`
	Groups       int64 `json:"groups"`
	Branches     int64 `json:"branches"`
	Logs         int64 `json:"logs"`
}

// AccessLog is one parsed GitLab API access log line
type AccessLog struct {
	ID           int      `json:"id"`
	AccessTime   string   `json:"access_time"`
	ClientIP     string   `json:"client_ip"`
	HTTPMethod   string   `json:"http_method"`
	APIPath      string   `json:"api_path"`
	HTTPStatus   int      `json:"http_status"`
	ResponseSize *int64   `json:"response_size,omitempty"`
	UserAgent    string   `json:"user_agent,omitempty"`
	ResponseTime *float64 `json:"response_time,omitempty"`
}

// LogList is returned by /logs
type LogList struct {
	Success      bool        `json:"success"`
	Logs         []AccessLog `json:"logs"`
	Count        int         `json:"count"`
	TotalRecords int64       `json:"total_records"`
}

// ParseLogRequest is the body of /parse-log
type ParseLogRequest struct {
	LogFile string `json:"log_file,omitempty"`
}

// ParseLogResult is returned by /parse-log
type ParseLogResult struct {
	Success              bool     `json:"success"`
	Message              string   `json:"message,omitempty"`
	ImportedCount        int      `json:"imported_count"`
	ImportedDates        []string `json:"imported_dates"`
	AlreadyImportedDates []string `json:"already_imported_dates"`
}

// DateRange bounds the imported log dates
type DateRange struct {
	MinDate string `json:"min_date,omitempty"`
	MaxDate string `json:"max_date,omitempty"`
}

// ImportStatus is returned by /status
type ImportStatus struct {
	Success       bool        `json:"success"`
	TotalRecords  int64       `json:"total_records"`
	ImportDays    int         `json:"import_days"`
	DateRange     DateRange   `json:"date_range"`
	ImportedDates interface{} `json:"imported_dates,omitempty"`
}

// ImportRecord is one day's import entry
type ImportRecord struct {
	LogDate     string `json:"log_date"`
	RecordCount int64  `json:"record_count"`
	ImportTime  string `json:"import_time,omitempty"`
	LogFilePath string `json:"log_file_path,omitempty"`
	IsComplete  bool   `json:"is_complete"`
	Status      string `json:"status"`
}

// ImportHistory is returned by /import-history
type ImportHistory struct {
	Success       bool           `json:"success"`
	ImportHistory []ImportRecord `json:"import_history"`
	TotalImports  int            `json:"total_imports"`
}
