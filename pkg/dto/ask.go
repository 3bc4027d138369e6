package dto

type QuestionRequest struct {
	Question    string      `json:"question" binding:"required,min=1,max=500"`
	Detections  []Detection `json:"detections"`
	ImageBase64 string      `json:"image_base64,omitempty"`
}

type AnswerResponse struct {
	Answer         string  `json:"answer"`
	ProcessingTime float64 `json:"processing_time"`
}
