package rasterizer

import "image"

// boxBlur は3回のボックスブラーでガウスぼかしを近似します。
// RGBA は乗算済みアルファなので、チャンネルごとの平均をそのまま取れます。
func boxBlur(img *image.RGBA, radius int) {
	if radius < 1 {
		return
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return
	}
	tmp := make([]uint8, len(img.Pix))
	for pass := 0; pass < 3; pass++ {
		blurAxis(img.Pix, tmp, w, h, img.Stride, radius, true)
		blurAxis(tmp, img.Pix, w, h, img.Stride, radius, false)
	}
}

func blurAxis(src, dst []uint8, w, h, stride, radius int, horizontal bool) {
	n, lines := w, h
	if !horizontal {
		n, lines = h, w
	}
	div := 2*radius + 1

	for line := 0; line < lines; line++ {
		idx := func(i int) int {
			i = min(max(i, 0), n-1)
			if horizontal {
				return line*stride + i*4
			}
			return i*stride + line*4
		}

		var sum [4]int
		for k := -radius; k <= radius; k++ {
			p := idx(k)
			for c := 0; c < 4; c++ {
				sum[c] += int(src[p+c])
			}
		}
		for i := 0; i < n; i++ {
			p := idx(i)
			for c := 0; c < 4; c++ {
				dst[p+c] = uint8(sum[c] / div)
			}
			out, in := idx(i-radius), idx(i+radius+1)
			for c := 0; c < 4; c++ {
				sum[c] += int(src[in+c]) - int(src[out+c])
			}
		}
	}
}
