package device

// ReportBuilder is implemented by input states that encode to a HID input
// report.
type ReportBuilder interface {
	// BuildReport encodes the input state into a byte slice for the HID transport.
	BuildReport() []byte
}
