package dto

// UploadFileResponse возвращается после сохранения файла в хранилище
type UploadFileResponse struct {
	URL          string `json:"url"`
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	Size         int64  `json:"size"`
	Type         string `json:"type"`
}

type DeleteFileRequest struct {
	Filename string `json:"filename" validate:"required"`
}
