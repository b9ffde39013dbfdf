package defs

// Common labels for logging
const (
	LabelComponent = "component"
	LabelName      = "name"
	LabelSink      = "sink"
	LabelSource    = "source"

	LabelLocal  = "local"
	LabelRemote = "remote"
	LabelServer = "server"
)

// ExportMarkerFileName marks a directory as owned by the file exporter
//
// Cleanup never touches a directory without it
const ExportMarkerFileName = ".logcat_toolkit_root"
