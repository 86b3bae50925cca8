package response

var (
	ErrInvalidRequestFormat = ErrorResponse{
		Status:  "error",
		Error:   "invalid_request",
		Details: "Invalid request format",
	}

	ErrGuideNotFound = ErrorResponse{
		Status:  "error",
		Error:   "guide_not_found",
		Details: "Guide does not exist",
	}

	ErrCustomURLTaken = ErrorResponse{
		Status:  "error",
		Error:   "custom_url_taken",
		Details: "This custom URL is already in use",
	}

	ErrFileTooLarge = ErrorResponse{
		Status:  "error",
		Error:   "file_too_large",
		Details: "File size must be less than 10MB",
	}

	ErrInvalidFileType = ErrorResponse{
		Status:  "error",
		Error:   "invalid_file_type",
		Details: "File type not allowed. Please upload images, documents, or archives.",
	}
)
