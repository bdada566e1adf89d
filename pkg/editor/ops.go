package editor

import "github.com/shouni/go-poster-kit/pkg/domain"

// AdjustScale は現在のスケールに delta を加え、範囲内に収めた新しいドキュメントを返します。
func AdjustScale(doc domain.PosterDocument, id domain.ElementID, delta float64, r domain.ScaleRange) domain.PosterDocument {
	return SetScale(doc, id, doc.Transform(id).Scale+delta, r)
}

// SetScale はスケールを絶対値で設定します。範囲外の値は黙って丸めます。
func SetScale(doc domain.PosterDocument, id domain.ElementID, scale float64, r domain.ScaleRange) domain.PosterDocument {
	v := r.Clamp(scale)
	return doc.SetTransform(id, domain.ElementUpdate{Scale: &v})
}

// CenterHorizontally は x オフセットだけを 0 に戻します。
func CenterHorizontally(doc domain.PosterDocument, id domain.ElementID) domain.PosterDocument {
	off := doc.Transform(id).Offset
	off.X = 0
	return doc.SetTransform(id, domain.ElementUpdate{Offset: &off})
}

// ToggleLayer は front と back を入れ替えます。他の要素のレイヤーには依存しません。
func ToggleLayer(doc domain.PosterDocument, id domain.ElementID) domain.PosterDocument {
	layer := doc.Transform(id).Layer.Toggle()
	return doc.SetTransform(id, domain.ElementUpdate{Layer: &layer})
}

// Move はオフセットを設定します。ドラッグはこの関数で反映されます。
func Move(doc domain.PosterDocument, id domain.ElementID, offset domain.Offset) domain.PosterDocument {
	return doc.SetTransform(id, domain.ElementUpdate{Offset: &offset})
}
