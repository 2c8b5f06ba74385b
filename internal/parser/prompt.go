package parser

// BuildVisionPrompt returns the extraction prompt for photographed or
// scanned statement images. Vision output uses the canonical convention
// directly: charges and purchases positive, credits negative.
func BuildVisionPrompt() string {
	return `You are a financial statement extraction assistant. Look at the provided image of a bank statement, credit card statement, or receipt and extract EVERY transaction you can see.

IMPORTANT INSTRUCTIONS:
- Extract every transaction line. Do not skip, summarize, or omit any.
- Report amounts as positive numbers for purchases and charges, negative numbers for payments, refunds and credits.
- Keep dates exactly as printed. Do not guess a year that is not visible.
- Use the merchant name as printed, without cleanup.
- If a field is not visible, use null.

Return ONLY a valid JSON object with no markdown formatting, no code fences, no explanatory prose. The object must have this shape:
{
  "summary": {
    "institution": "",
    "period": "",
    "transaction_count": 0
  },
  "transactions": [
    {
      "date": "as printed or null",
      "merchant": "name or null",
      "description": "full line text",
      "amount": 0.00,
      "currency": "USD"
    }
  ]
}`
}

// BuildTextPrompt returns the extraction prompt for recovered-but-messy
// statement text. Text output is debits-negative; the pipeline flips it
// into the canonical charges-positive convention before merging.
func BuildTextPrompt() string {
	return `You are a financial statement extraction assistant. The following text was extracted from a bank statement, credit card statement, or receipt. It may contain OCR noise. Extract EVERY transaction.

IMPORTANT INSTRUCTIONS:
- Extract every transaction line. Do not skip, summarize, or omit any.
- Report amounts as negative numbers for purchases, charges and debits, positive numbers for payments, refunds, deposits and credits.
- Keep dates exactly as printed. Do not guess a year that is not present.
- Use the merchant name as printed, without cleanup.
- If a field is not present, use null.

Return ONLY a valid JSON object with no markdown formatting, no code fences, no explanatory prose. The object must have this shape:
{
  "summary": {
    "institution": "",
    "period": "",
    "transaction_count": 0
  },
  "transactions": [
    {
      "date": "as printed or null",
      "merchant": "name or null",
      "description": "full line text",
      "amount": 0.00,
      "currency": "USD"
    }
  ]
}`
}

// BuildRepairPrompt asks a model to fix malformed JSON output. One repair
// round only; a second failure is terminal for the tier.
func BuildRepairPrompt(raw, reason string) string {
	return `The following text was supposed to be a single valid JSON object with a "transactions" array, but it is malformed. Problem: ` + reason + `

Fix it and return ONLY the corrected JSON object, with no markdown formatting, no code fences, and no explanation. Do not invent data that is not present in the text.

` + raw
}
