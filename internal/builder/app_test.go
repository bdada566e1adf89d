package builder

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-poster-kit/pkg/config"
	"github.com/shouni/go-poster-kit/pkg/domain"
	"github.com/shouni/go-poster-kit/pkg/workflow"
)

func productPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 300, 400))
	for y := 0; y < 400; y++ {
		for x := 0; x < 300; x++ {
			img.Set(x, y, color.RGBA{R: 30, G: 120, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNewAppContext(t *testing.T) {
	t.Run("API キーが無いとオンラインでは組み立てられない", func(t *testing.T) {
		_, err := NewAppContext(context.Background(), config.DefaultConfig(), false)
		assert.Error(t, err)
	})

	t.Run("オフラインで生成から書き出しまで通す", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Layout = "3"
		app, err := NewAppContext(context.Background(), cfg, true)
		require.NoError(t, err)
		assert.Equal(t, "3", app.Session.Preset().ID)

		require.NoError(t, app.Session.SetProduct(domain.ImageRef{Data: productPNG(t), MIMEType: "image/png"}))
		doc, err := app.Workflow.Generate(context.Background(), workflow.GenerateRequest{
			Hints: domain.Hints{BrandName: "Aqua"},
		})
		require.NoError(t, err)
		assert.Equal(t, "Aqua", doc.Field(domain.ElementBrand))
		assert.Equal(t, domain.ToneEnergetic, doc.Tone())
		assert.Equal(t, domain.OriginOriginal, doc.Background().Origin)

		scene, err := app.Session.CaptureScene()
		require.NoError(t, err)
		path := filepath.Join(t.TempDir(), "poster.png")
		_, err = app.Publisher.Export(context.Background(), scene, path)
		require.NoError(t, err)

		f, err := os.Open(path)
		require.NoError(t, err)
		defer f.Close()
		cfgImg, err := png.DecodeConfig(f)
		require.NoError(t, err)
		assert.Equal(t, 900, cfgImg.Width)
		assert.Equal(t, 1200, cfgImg.Height)
	})
}
