package prompts

import (
	_ "embed"
)

const (
	ModeContent   = "content"
	ModeAnalysis  = "analysis"
	ModeSynthesis = "synthesis"
)

// ProductDetails は商品画像の解析結果です。合成プロンプトで商品の見た目を固定するのに使います。
type ProductDetails struct {
	ProductType     string `json:"product_type"`
	ExactColor      string `json:"exact_color"`
	BrandVisible    string `json:"brand_visible"`
	DesignDetails   string `json:"design_details"`
	MaterialFinish  string `json:"material_finish"`
	NotableFeatures string `json:"notable_features"`
}

// GenericProductDetails は解析に失敗したときに使う汎用の記述です。
var GenericProductDetails = ProductDetails{
	ProductType: "product",
	ExactColor:  "original color",
}

// TemplateData はプロンプトテンプレートに渡すデータ構造です。
type TemplateData struct {
	BrandName string
	Slogan    string
	Context   string
	Tones     []string
	Tone      string
	Directive string
	Product   ProductDetails
}

var (
	//go:embed content.md
	ContentPrompt string
	//go:embed analysis.md
	AnalysisPrompt string
	//go:embed synthesis.md
	SynthesisPrompt string
)

// allTemplates はモードとテンプレート文字列を紐づけるマップなのだ。
var allTemplates = map[string]string{
	ModeContent:   ContentPrompt,
	ModeAnalysis:  AnalysisPrompt,
	ModeSynthesis: SynthesisPrompt,
}
