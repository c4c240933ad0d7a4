// Package domain contains the core domain types for the document translator.
package domain

// Object metadata keys shared by the upload API and the processing pipeline.
const (
	MetaTargetLanguage   = "target-language"
	MetaOriginalFilename = "original-filename"
	MetaOriginalFile     = "original-file"
	MetaSourceLanguage   = "source-language"
)

const (
	// DefaultTargetLanguage is used when an upload carries no target-language.
	DefaultTargetLanguage = "es"

	// SourceLanguage is the fixed language of every uploaded document.
	SourceLanguage = "en"

	// OutputPrefix is the key prefix of every translated artifact.
	OutputPrefix = "translated/"

	// ArtifactContentType is the content type of every translated artifact.
	ArtifactContentType = "text/plain"
)

// SourceDocument is an uploaded object as seen by the pipeline.
type SourceDocument struct {
	Bucket   string
	Key      string
	Metadata map[string]string
}

// TargetLanguage returns the raw target-language metadata, or the default
// when it is absent or empty.
func (d SourceDocument) TargetLanguage() string {
	if lang := d.Metadata[MetaTargetLanguage]; lang != "" {
		return lang
	}
	return DefaultTargetLanguage
}

// TranslatedArtifact is the persisted output of one successful invocation.
type TranslatedArtifact struct {
	Key         string
	Content     []byte
	ContentType string
	Metadata    map[string]string
}

// UploadRequest is the body of a POST /upload request.
type UploadRequest struct {
	FileContent    string `json:"fileContent"`
	FileName       string `json:"fileName"`
	TargetLanguage string `json:"targetLanguage"`
}

// UploadResponse is returned after a successful upload.
type UploadResponse struct {
	Message string `json:"message"`
	Key     string `json:"key"`
}

// ListedFile describes one translated artifact in a GET /list response.
type ListedFile struct {
	Key          string `json:"key"`
	Size         int64  `json:"size"`
	LastModified string `json:"lastModified"`
	DownloadURL  string `json:"downloadUrl"`
}

// ListResponse is the body of a GET /list response.
type ListResponse struct {
	Files []ListedFile `json:"files"`
}

// ErrorResponse is the body of every failed API response.
type ErrorResponse struct {
	Error string `json:"error"`
}
