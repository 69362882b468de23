package ocr

import "encoding/base64"

// visionPrompt asks a multimodal model for a plain transcription. The
// keyword validator does the judging, the model only reads.
const visionPrompt = "Transcribe all text visible in this payment receipt image exactly as written. " +
	"Return only the transcribed text, with no commentary. If there is no readable text, return an empty response."

func pngDataURL(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
