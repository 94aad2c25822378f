package llm

import (
	"strings"
)

// PersonTemplate is the JSON shape requested for free-text extraction.
const PersonTemplate = `{
  "name": "",
  "street": "",
  "city": "",
  "state": "",
  "country": "",
  "zip_code": "",
  "phone_number": ""
}`

// IDDocumentTemplate is the JSON shape requested for license images.
const IDDocumentTemplate = `{
  "fullName": "",
  "dateOfBirth": "",
  "address": {
    "street": "",
    "city": "",
    "state": "",
    "country": "",
    "zipCode": ""
  },
  "documentNumber": "",
  "expirationDate": "",
  "issueDate": "",
  "licenseClass": "",
  "endorsements": "",
  "restrictions": "",
  "sex": "",
  "eyeColor": "",
  "height": "",
  "detectedCountry": "",
  "detectedState": "",
  "barcodePresent": false,
  "warnings": [],
  "confidences": {},
  "boxes": {}
}`

// FocusedTemplate is the minimal shape requested by the focused re-extraction.
const FocusedTemplate = `{
  "fullName": "",
  "eyeColor": "",
  "dateOfBirth": "",
  "documentNumber": "",
  "expirationDate": "",
  "licenseClass": ""
}`

// BuildTextPrompt asks for the 7-field person object from free text.
func BuildTextPrompt(input string) string {
	parts := []string{
		"Extract personal information from this text. Return ONLY valid JSON with these exact fields (use empty string for missing fields, never null):",
		"",
		PersonTemplate,
		"",
		"Text to parse: " + input,
		"",
		"IMPORTANT:",
		"- Never fabricate values",
		"- Preserve exact spellings and numbers from input",
		"- Use empty string for missing fields",
		"- Return only valid JSON",
	}
	return strings.Join(parts, "\n")
}

// imageFieldRules are the per-field instructions for license images. Vision
// recall drops noticeably when these are summarized.
var imageFieldRules = []string{
	"fullName: the holder's name, usually the largest text near the photo. Labels: NAME, LN/FN, 1/2 (AAMVA field numbers). Keep the order printed on the card, including commas (e.g. \"SMITH, JOHN MICHAEL\").",
	"dateOfBirth: labels DOB, BIRTH, DATE OF BIRTH, 3. Usually printed in red or bold. Output yyyy-mm-dd when certain; otherwise copy exactly as printed.",
	"address: street on the first line under the name, then city, state/province and ZIP on the next line. Labels: ADDRESS, ADDR, 8. Put the ZIP (5 digits or ZIP+4) in zipCode. Use the country printed on the card for country.",
	"documentNumber: labels DL, DLN, LIC#, LIC NO, LICENSE NO, ID, NO, 4d. Copy every character exactly, including letters and leading zeros. This is NOT the document discriminator (DD) or audit number.",
	"expirationDate: labels EXP, EXPIRES, 4b. Output yyyy-mm-dd when certain.",
	"issueDate: labels ISS, ISSUED, 4a. Output yyyy-mm-dd when certain.",
	"licenseClass: labels CLASS, CL, 9. Usually a single letter such as C or D.",
	"endorsements: labels END, ENDORSE, 9a. Use \"NONE\" only if the card prints NONE.",
	"restrictions: labels REST, RESTR, R, 12. Copy the code or text as printed.",
	"sex: labels SEX, 15. Output the printed value (M, F or X).",
	"eyeColor: labels EYES, EYE, 18. Copy the printed code (e.g. BRN, BLU, GRN, HZL).",
	"height: labels HGT, HT, 16. Copy as printed (e.g. 5'-10\" or 178 cm).",
	"detectedCountry and detectedState: the issuing country and state/province shown in the card header or flag.",
	"barcodePresent: true if a PDF417 barcode or magnetic stripe is visible on the image, otherwise false.",
	"warnings: short notes about glare, blur, cropping or any value you are unsure of.",
	"confidences: optional map of field name to a number between 0 and 1.",
	"boxes: optional map of field name to [x, y, width, height] normalized to 0..1.",
}

// BuildImagePrompt asks for the full ID-document object from a license image.
func BuildImagePrompt() string {
	var b strings.Builder
	b.WriteString("Extract driver's license information from this image. Return ONLY valid JSON with these exact fields (use empty string for missing fields):\n\n")
	b.WriteString(IDDocumentTemplate)
	b.WriteString("\n\nFIELD RULES:\n")
	for _, r := range imageFieldRules {
		b.WriteString("- ")
		b.WriteString(r)
		b.WriteString("\n")
	}
	b.WriteString("\nLAYOUT HINTS:\n")
	b.WriteString("- US licenses print the state name across the top and the photo on the left.\n")
	b.WriteString("- Numbered labels (1, 2, 3, 4a, 4b, 4d, 8, 9, 9a, 12, 15, 16, 18) follow the AAMVA layout.\n")
	b.WriteString("- Dates on US cards are month/day/year. Dates on most other cards are day/month/year.\n")
	b.WriteString("\nIMPORTANT:\n")
	b.WriteString("- Return only valid JSON\n")
	b.WriteString("- Normalize dates to yyyy-mm-dd format when certain\n")
	b.WriteString("- Add warnings for uncertain data\n")
	b.WriteString("- Never fabricate information\n")
	b.WriteString("- Use empty strings for missing fields")
	return b.String()
}

// BuildRetryPrompt is the corrective follow-up after an unparseable response.
// Calls carry no history, so text extraction must repeat its input; image
// retries pass "" and reattach the image instead.
func BuildRetryPrompt(subject, template, input string) string {
	p := "The previous response was not valid JSON. Return only a valid JSON object with the " + subject +
		". No explanatory text.\n\nUse exactly these fields:\n\n" + template
	if input != "" {
		p += "\n\nText to parse: " + input
	}
	return p
}

// BuildFocusedPrompt asks again for the mandatory license fields only.
func BuildFocusedPrompt(missing []string) string {
	parts := []string{
		"Look at this driver's license image again. Extract ONLY the following fields and return a minimal JSON object:",
		"",
		FocusedTemplate,
		"",
		"Previously missing: " + strings.Join(missing, ", "),
		"",
		"- fullName: labels NAME, 1, 2",
		"- eyeColor: labels EYES, EYE, 18",
		"- dateOfBirth: labels DOB, 3 (yyyy-mm-dd when certain)",
		"- documentNumber: labels DL, DLN, LIC#, 4d",
		"- expirationDate: labels EXP, 4b (yyyy-mm-dd when certain)",
		"- licenseClass: labels CLASS, 9",
		"",
		"Use empty string for fields that are not visible. Never fabricate values. Return only valid JSON.",
	}
	return strings.Join(parts, "\n")
}
