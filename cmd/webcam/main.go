// Command webcam runs the detection pipeline against a camera device,
// a video file, or a single still image, drawing labeled boxes on the
// frames as they are processed.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"time"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-detect/models"
	"github.com/nvr-ai/go-detect/models/postprocess"
	"github.com/nvr-ai/go-detect/models/yolo"
	"github.com/nvr-ai/go-detect/onnx"
	"github.com/nvr-ai/go-detect/server"
)

const frameTimeout = 10 * time.Second

func main() {
	var (
		modelPath  string
		libPath    string
		deviceID   int
		videoPath  string
		imagePath  string
		outputPath string
		confidence float64
		iou        float64
		showWindow bool
	)
	flag.StringVar(&modelPath, "model", "", "Path to ONNX model file")
	flag.StringVar(&libPath, "lib", "", "Path to ONNX Runtime shared library")
	flag.IntVar(&deviceID, "device", 0, "Video capture device ID")
	flag.StringVar(&videoPath, "video", "", "Path to video file instead of a camera")
	flag.StringVar(&imagePath, "image", "", "Path to a single image instead of a stream")
	flag.StringVar(&outputPath, "output", "", "Where to write the annotated image (image mode)")
	flag.Float64Var(&confidence, "confidence", 0.5, "Detection confidence threshold")
	flag.Float64Var(&iou, "iou", 0.7, "NMS IoU threshold")
	flag.BoolVar(&showWindow, "show-window", false, "Show a visualization window")
	flag.Parse()

	if modelPath == "" {
		log.Fatal("-model is required")
	}

	modelCfg := onnx.DefaultConfig()
	modelCfg.ModelPath = modelPath
	modelCfg.SharedLibraryPath = libPath

	session, err := onnx.NewSession(modelCfg)
	if err != nil {
		log.Fatalf("failed to load model: %v", err)
	}
	defer session.Close()

	decodeCfg := yolo.DefaultConfig()
	decodeCfg.ConfidenceThreshold = float32(confidence)

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	pipeline := server.NewPipeline(
		session, models.COCOClassTable(), decodeCfg, float32(iou), logger)

	if imagePath != "" {
		processImage(pipeline, imagePath, outputPath)
		return
	}

	var capture *gocv.VideoCapture
	if videoPath != "" {
		capture, err = gocv.OpenVideoCapture(videoPath)
	} else {
		capture, err = gocv.OpenVideoCapture(deviceID)
	}
	if err != nil {
		log.Fatalf("failed to open video capture: %v", err)
	}
	defer capture.Close()

	var window *gocv.Window
	if showWindow {
		window = gocv.NewWindow("Object Detection")
		defer window.Close()
	}

	mat := gocv.NewMat()
	defer mat.Close()

	// FPS tracking variables
	fps := 0.0
	frameCount := 0
	lastTime := time.Now()

	fmt.Printf("start reading frames\n")
	for {
		if ok := capture.Read(&mat); !ok {
			fmt.Printf("capture closed\n")
			return
		}
		if mat.Empty() {
			continue
		}

		frame, err := mat.ToImage()
		if err != nil {
			log.Printf("failed to convert frame: %v", err)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), frameTimeout)
		detections, err := pipeline.DetectImage(ctx, frame)
		cancel()
		if err != nil {
			log.Printf("detection failed: %v", err)
			continue
		}

		frameCount++
		if elapsed := time.Since(lastTime).Seconds(); elapsed >= 1.0 {
			fps = float64(frameCount) / elapsed
			frameCount = 0
			lastTime = time.Now()
		}

		fmt.Printf("found %d objects | FPS: %.2f\n", len(detections), fps)
		drawDetections(&mat, detections)

		if window != nil {
			window.IMShow(mat)
			window.WaitKey(1)
		}
	}
}

// processImage runs the pipeline once on a still image and optionally
// writes an annotated copy.
func processImage(pipeline *server.Pipeline, imagePath, outputPath string) {
	mat := gocv.IMRead(imagePath, gocv.IMReadColor)
	if mat.Empty() {
		log.Fatalf("failed to read image: %s", imagePath)
	}
	defer mat.Close()

	img, err := mat.ToImage()
	if err != nil {
		log.Fatalf("failed to convert image: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), frameTimeout)
	defer cancel()
	detections, err := pipeline.DetectImage(ctx, img)
	if err != nil {
		log.Fatalf("detection failed: %v", err)
	}

	fmt.Printf("found %d objects in %s\n", len(detections), imagePath)
	for _, d := range detections {
		fmt.Println(d.String())
	}

	if outputPath != "" {
		drawDetections(&mat, detections)
		if !gocv.IMWrite(outputPath, mat) {
			log.Fatalf("failed to write annotated image: %s", outputPath)
		}
		fmt.Printf("annotated image saved to %s\n", outputPath)
	}
}

func drawDetections(mat *gocv.Mat, detections []postprocess.Detection) {
	green := color.RGBA{G: 255, A: 255}
	for _, d := range detections {
		rect := image.Rect(int(d.Box.X1), int(d.Box.Y1), int(d.Box.X2), int(d.Box.Y2))
		gocv.Rectangle(mat, rect, green, 2)
		label := fmt.Sprintf("%s %.2f", d.Label, d.Confidence)
		gocv.PutText(mat, label, rect.Min, gocv.FontHersheyPlain, 1.2, green, 2)
	}
}
