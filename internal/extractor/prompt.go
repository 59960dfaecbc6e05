package extractor

// BuildDeedPrompt returns the extraction prompt for a recorded deed's OCR text.
func BuildDeedPrompt(text string) string {
	return `You are a document data extraction assistant. Read the recorded deed text below and extract its fields into the following JSON structure.

IMPORTANT INSTRUCTIONS:
- Copy "written_amount" and "county_raw" VERBATIM from the text. Do not correct spelling, expand abbreviations or convert words to digits.
- "numeric_amount" is the figure amount as an integer number of cents (e.g. "$1,250,000.00" becomes 125000000). If the amount has no figure, use null.
- Copy dates as they appear. Do not reorder or fix them.
- Do not infer values that are not in the text. Use null for a missing required field and empty string for a missing optional field.

Return ONLY valid JSON with no markdown formatting, no code fences, no explanation. Just the raw JSON object.

Return two top-level keys: "data" and "confidence_scores".

The "data" object must follow this schema:
{
  "doc_id": "",
  "state": "",
  "signed_date": "",
  "recorded_date": "",
  "numeric_amount": 0,
  "written_amount": "",
  "county_raw": "",
  "grantor": "",
  "grantee": "",
  "apn": "",
  "status": ""
}

The "confidence_scores" object must have the same keys as "data" with float values between 0.0 and 1.0 indicating your confidence for each extracted field. Use 0.0 for fields not found in the text.

Deed text:
` + text
}
