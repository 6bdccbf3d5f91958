package frame

type Format string

const (
	// YUV 4:2:0 Formats

	// FormatI420 https://www.fourcc.org/pixel-format/yuv-i420/
	FormatI420 Format = "I420"
	// FormatNV21 https://www.fourcc.org/pixel-format/yuv-nv21/
	FormatNV21 Format = "NV21"
	// FormatNV12 https://www.fourcc.org/pixel-format/yuv-nv12/
	FormatNV12 Format = "NV12"
)

// YUV aliases

// FormatYV21 is an alias of FormatI420
const FormatYV21 = FormatI420
