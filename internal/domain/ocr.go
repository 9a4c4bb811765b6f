package domain

// ExtractedData holds identifiers pulled out of OCR text.
type ExtractedData struct {
	Amounts        []string `json:"amounts"`
	Dates          []string `json:"dates"`
	AccountNumbers []string `json:"accountNumbers"`
	TransactionIDs []string `json:"transactionIds"`
}

// OCRTable is a table recognized in a document.
type OCRTable struct {
	Title   string     `json:"title,omitempty"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// OCRResult is the output of the vision-extract endpoint.
type OCRResult struct {
	RawText       string        `json:"rawText"`
	Tables        []OCRTable    `json:"tables"`
	ExtractedData ExtractedData `json:"extractedData"`
	DocumentType  string        `json:"documentType"`
	Confidence    float64       `json:"confidence"`
}

// FileOCRResult pairs an OCR result with its file.
type FileOCRResult struct {
	FileName  string    `json:"fileName"`
	OCRResult OCRResult `json:"ocrResult"`
}
