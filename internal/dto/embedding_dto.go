package dto

type EmbeddingStatusResponse struct {
	Ready    bool   `json:"ready"`
	Model    string `json:"model"`
	Embedded int64  `json:"embedded"`
	Pending  int64  `json:"pending"`
	Total    int64  `json:"total"`
}
