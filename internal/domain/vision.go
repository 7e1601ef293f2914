package domain

// TextType tags a text detection as a full line or a single word fragment.
type TextType string

const (
	TextTypeLine TextType = "LINE"
	TextTypeWord TextType = "WORD"
)

// TextDetection is one entry of a text-detection response, in detector order.
type TextDetection struct {
	Text       string
	Type       TextType
	Confidence float32
}

// ImageLabel is one label of a label-detection response.
type ImageLabel struct {
	Name       string
	Confidence float32 // 0-100
	Instances  int
	Parents    []string
}

type LabelQuery struct {
	MaxLabels     int32
	MinConfidence float32
}

// GenerationRequest is the typed contract of the generative text model.
type GenerationRequest struct {
	Prompt      string
	MaxGenLen   int
	Temperature float64
	TopP        float64
}

// ImageUploadDTO carries an image as base64 for JSON clients.
type ImageUploadDTO struct {
	ImageBase64 string `json:"image_base64" binding:"required"`
}
