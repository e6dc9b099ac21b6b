package domain

import "errors"

var (
	ErrNoFileSelected        = errors.New("no file selected")
	ErrStorageWriteFailed    = errors.New("storage write failed")
	ErrGalleryListFailed     = errors.New("gallery list failed")
	ErrNoImagesToAnalyze     = errors.New("no images to analyze")
	ErrUpstreamRejected      = errors.New("upstream rejected the request")
	ErrAnalysisRequestFailed = errors.New("analysis request failed")
	ErrAnalysisInProgress    = errors.New("analysis already in progress")
	ErrUploadInProgress      = errors.New("upload already in progress")
)

// UserMessage maps an operation error to the short status string shown to the
// user. Collaborator detail is never part of it.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoFileSelected):
		return "ファイルが選択されていません"
	case errors.Is(err, ErrStorageWriteFailed):
		return "アップロードに失敗しました"
	case errors.Is(err, ErrGalleryListFailed):
		return "画像の読み込みに失敗しました"
	case errors.Is(err, ErrNoImagesToAnalyze):
		return "分析する画像がありません"
	case errors.Is(err, ErrUpstreamRejected):
		return "画像が多すぎるため分析できませんでした"
	case errors.Is(err, ErrAnalysisInProgress), errors.Is(err, ErrUploadInProgress):
		return "処理中です"
	default:
		return "分析に失敗しました"
	}
}
