package domain

type ReportStage string

const (
	StagePlate          ReportStage = "plate"
	StageDescription    ReportStage = "description"
	StageClassification ReportStage = "classification"
	StageEvidence       ReportStage = "evidence"
	StageStored         ReportStage = "stored"
	StageOwner          ReportStage = "owner"
	StageNotice         ReportStage = "notice"
)

type EventLevel string

const (
	LevelInfo    EventLevel = "info"
	LevelSuccess EventLevel = "success"
	LevelWarning EventLevel = "warning"
	LevelError   EventLevel = "error"
)

// ReportEvent is pushed to the client as soon as a stage completes.
type ReportEvent struct {
	Stage   ReportStage   `json:"stage"`
	Level   EventLevel    `json:"level"`
	Message string        `json:"message"`
	Value   string        `json:"value,omitempty"`
	Owner   *VehicleOwner `json:"owner,omitempty"`
}

// ReportOutcome aggregates everything a finished report produced.
type ReportOutcome struct {
	Record     *ViolationRecord `json:"record"`
	Owner      *VehicleOwner    `json:"owner,omitempty"`
	NoticeSent bool             `json:"notice_sent"`
	Warnings   []string         `json:"warnings,omitempty"`
}

// ViolationReportedEvent is published after a record is stored.
type ViolationReportedEvent struct {
	ViolationID   string `json:"violation_id"`
	LicensePlate  string `json:"license_plate"`
	ViolationType string `json:"violation_type"`
	ReportedBy    string `json:"reported_by"`
	Timestamp     string `json:"timestamp"`
}
