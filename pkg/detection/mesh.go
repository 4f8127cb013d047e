package detection

import (
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-attention/pkg/features"
)

// Landmark count of the iris-refined mesh model: 468 face points plus
// 4 per iris. features.Extract indexes the iris block, so a plain
// 468-point mesh is not enough.
const meshLandmarks = 478

// MeshDetector locates faces with OpenCV's FaceDetectorYN and runs a
// face-mesh ONNX model on each face crop to recover the full landmark
// set. Landmarks come back normalized to the full image, ready for
// features.Extract.
type MeshDetector struct {
	locator gocv.FaceDetectorYN
	mesh    gocv.Net
	config  Config
	mu      sync.Mutex // Protects inference
}

// NewMesh creates a mesh detector from the configured model files.
func NewMesh(cfg Config) (*MeshDetector, error) {
	for _, path := range []string{cfg.FaceModelPath, cfg.MeshModelPath} {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("model file not found: %s", path)
		}
	}

	locator := gocv.NewFaceDetectorYNWithParams(
		cfg.FaceModelPath,
		"",                          // No config file needed for ONNX
		image.Pt(320, 320),          // Initial input size, updated per image
		float32(cfg.ConfidenceThresh),
		0.3,  // NMS threshold
		5000, // Top K
		int(gocv.NetBackendDefault),
		int(gocv.NetTargetCPU),
	)

	mesh := gocv.ReadNetFromONNX(cfg.MeshModelPath)
	if mesh.Empty() {
		locator.Close()
		return nil, fmt.Errorf("failed to load mesh model from %s", cfg.MeshModelPath)
	}
	mesh.SetPreferableBackend(gocv.NetBackendDefault)
	mesh.SetPreferableTarget(gocv.NetTargetCPU)

	return &MeshDetector{
		locator: locator,
		mesh:    mesh,
		config:  cfg,
	}, nil
}

// Detect finds faces in the JPEG image and attaches their landmarks.
func (d *MeshDetector) Detect(jpeg []byte) ([]Face, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	img, err := gocv.IMDecode(jpeg, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	defer img.Close()

	if img.Empty() {
		return nil, fmt.Errorf("empty image")
	}

	imgW := float64(img.Cols())
	imgH := float64(img.Rows())

	d.locator.SetInputSize(image.Pt(img.Cols(), img.Rows()))

	found := gocv.NewMat()
	defer found.Close()
	d.locator.Detect(img, &found)

	var faces []Face
	for r := 0; r < found.Rows(); r++ {
		// FaceDetectorYN output: 0-3 bbox in pixels, 4-13 coarse
		// landmarks, 14 score.
		x := float64(found.GetFloatAt(r, 0))
		y := float64(found.GetFloatAt(r, 1))
		w := float64(found.GetFloatAt(r, 2))
		h := float64(found.GetFloatAt(r, 3))
		score := float64(found.GetFloatAt(r, 14))

		face := Face{
			X:          x / imgW,
			Y:          y / imgH,
			W:          w / imgW,
			H:          h / imgH,
			Confidence: score,
		}

		if lm, err := d.meshLandmarksFor(img, x, y, w, h); err == nil {
			face.Landmarks = lm
		}

		faces = append(faces, face)
	}

	return faces, nil
}

// meshLandmarksFor runs the mesh net on an expanded face crop and maps
// the landmarks back to full-image normalized coordinates.
func (d *MeshDetector) meshLandmarksFor(img gocv.Mat, x, y, w, h float64) ([]features.Point, error) {
	imgW := img.Cols()
	imgH := img.Rows()

	// Expand the box by 25% so eyebrows and chin stay in the crop.
	pad := 0.25
	x0 := int(x - w*pad)
	y0 := int(y - h*pad)
	x1 := int(x + w*(1+pad))
	y1 := int(y + h*(1+pad))
	x0 = max(0, x0)
	y0 = max(0, y0)
	x1 = min(imgW, x1)
	y1 = min(imgH, y1)
	if x1-x0 < 2 || y1-y0 < 2 {
		return nil, fmt.Errorf("degenerate face crop")
	}

	rect := image.Rect(x0, y0, x1, y1)
	crop := img.Region(rect)
	defer crop.Close()

	size := image.Pt(d.config.MeshInputSize, d.config.MeshInputSize)
	blob := gocv.BlobFromImage(crop, 1.0/255.0, size, gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.mesh.SetInput(blob, "")
	out := d.mesh.Forward("")
	defer out.Close()

	// Output: 478 * (x, y, z) in mesh-input pixel coordinates.
	flat := out.Reshape(1, 1)
	defer flat.Close()
	if flat.Cols() < meshLandmarks*3 {
		return nil, fmt.Errorf("unexpected mesh output size %d", flat.Cols())
	}

	cropW := float64(x1 - x0)
	cropH := float64(y1 - y0)
	inSize := float64(d.config.MeshInputSize)

	landmarks := make([]features.Point, meshLandmarks)
	for i := 0; i < meshLandmarks; i++ {
		lx := float64(flat.GetFloatAt(0, i*3))
		ly := float64(flat.GetFloatAt(0, i*3+1))
		landmarks[i] = features.Point{
			X: (float64(x0) + lx/inSize*cropW) / float64(imgW),
			Y: (float64(y0) + ly/inSize*cropH) / float64(imgH),
		}
	}

	return landmarks, nil
}

// Close releases the detector resources.
func (d *MeshDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.locator.Close()
	return d.mesh.Close()
}
