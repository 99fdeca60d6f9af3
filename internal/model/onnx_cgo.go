//go:build onnx

package model

/*
#cgo LDFLAGS: -lonnxruntime
#include <onnxruntime_c_api.h>
#include <stdlib.h>

static const OrtApi* g_ort = NULL;

typedef struct {
	OrtEnv* env;
	OrtSession* session;
	OrtSessionOptions* opts;
	OrtMemoryInfo* mem_info;
	OrtAllocator* allocator;
} ortHandle;

static int ort_open(const char* model_path, int use_cuda, ortHandle* h) {
	g_ort = OrtGetApiBase()->GetApi(ORT_API_VERSION);
	if (!g_ort) return -1;

	OrtStatus* status = NULL;

	status = g_ort->CreateEnv(ORT_LOGGING_LEVEL_WARNING, "silhouette", &h->env);
	if (status) { g_ort->ReleaseStatus(status); return -2; }

	status = g_ort->CreateSessionOptions(&h->opts);
	if (status) { g_ort->ReleaseStatus(status); return -3; }

	if (use_cuda) {
		status = OrtSessionOptionsAppendExecutionProvider_CUDA(h->opts, 0);
		if (status) {
			g_ort->ReleaseStatus(status);
			status = NULL;
		}
	}

	g_ort->SetIntraOpNumThreads(h->opts, 1);
	g_ort->SetSessionGraphOptimizationLevel(h->opts, ORT_ENABLE_ALL);

	status = g_ort->CreateSession(h->env, model_path, h->opts, &h->session);
	if (status) { g_ort->ReleaseStatus(status); return -4; }

	status = g_ort->CreateCpuMemoryInfo(OrtArenaAllocator, OrtMemTypeDefault, &h->mem_info);
	if (status) { g_ort->ReleaseStatus(status); return -5; }

	status = g_ort->GetAllocatorWithDefaultOptions(&h->allocator);
	if (status) { g_ort->ReleaseStatus(status); return -6; }

	return 0;
}

static int ort_run(ortHandle* h, float* input_data, int batch, int channels, int height, int width, float* output_data) {
	if (!h->session || !g_ort) return -1;

	OrtStatus* status = NULL;
	const int64_t shape[] = {batch, channels, height, width};
	const size_t len = (size_t)batch * channels * height * width * sizeof(float);

	OrtValue* input_tensor = NULL;
	status = g_ort->CreateTensorWithDataAsOrtValue(
		h->mem_info, input_data, len, shape, 4,
		ONNX_TENSOR_ELEMENT_DATA_TYPE_FLOAT, &input_tensor);
	if (status) { g_ort->ReleaseStatus(status); return -2; }

	char* input_name = NULL;
	char* output_name = NULL;
	g_ort->SessionGetInputName(h->session, 0, h->allocator, &input_name);
	g_ort->SessionGetOutputName(h->session, 0, h->allocator, &output_name);

	const char* input_names[] = { input_name };
	const char* output_names[] = { output_name };
	OrtValue* output_tensor = NULL;

	status = g_ort->Run(h->session, NULL, input_names,
		(const OrtValue* const*)&input_tensor, 1, output_names, 1, &output_tensor);

	g_ort->AllocatorFree(h->allocator, input_name);
	g_ort->AllocatorFree(h->allocator, output_name);
	g_ort->ReleaseValue(input_tensor);

	if (status) { g_ort->ReleaseStatus(status); return -3; }

	float* out_ptr = NULL;
	g_ort->GetTensorMutableData(output_tensor, (void**)&out_ptr);
	size_t out_len = (size_t)batch * height * width;
	for (size_t i = 0; i < out_len; i++) {
		output_data[i] = out_ptr[i];
	}

	g_ort->ReleaseValue(output_tensor);
	return 0;
}

static void ort_close(ortHandle* h) {
	if (h->session) g_ort->ReleaseSession(h->session);
	if (h->opts) g_ort->ReleaseSessionOptions(h->opts);
	if (h->mem_info) g_ort->ReleaseMemoryInfo(h->mem_info);
	if (h->env) g_ort->ReleaseEnv(h->env);
}
*/
import "C"

import (
	"context"
	"fmt"
	"unsafe"

	"github.com/five82/silhouette/internal/config"
	"github.com/five82/silhouette/internal/device"
	"github.com/five82/silhouette/internal/frame"
)

// onnxEngine runs inference via the ONNX Runtime C API. One instance is
// bound to one OrtSession; workers each own their own instance so sessions
// are never shared across goroutines.
type onnxEngine struct {
	handle C.ortHandle
}

func newEngine(variant config.ModelVariant, dev device.Device, weightsPath string) (Engine, error) {
	cPath := C.CString(weightsPath)
	defer C.free(unsafe.Pointer(cPath))

	useCUDA := C.int(0)
	if dev.Kind == device.GPU {
		useCUDA = 1
	}

	e := &onnxEngine{}
	rc := C.ort_open(cPath, useCUDA, &e.handle)
	if rc != 0 {
		return nil, fmt.Errorf("onnx session open failed for %s (code %d)", weightsPath, int(rc))
	}
	return e, nil
}

func (e *onnxEngine) Infer(ctx context.Context, batch []frame.Frame) ([]frame.Mask, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(batch) == 0 {
		return nil, nil
	}

	w, h := int(squareSize), int(squareSize)
	input := make([]float32, 0, len(batch)*3*w*h)
	for _, f := range batch {
		input = append(input, toCHWFloat(resizeFrameBilinear(f, squareSize))...)
	}

	output := make([]float32, len(batch)*h*w)
	rc := C.ort_run(&e.handle,
		(*C.float)(unsafe.Pointer(&input[0])),
		C.int(len(batch)), C.int(3), C.int(h), C.int(w),
		(*C.float)(unsafe.Pointer(&output[0])))
	if rc != 0 {
		return nil, fmt.Errorf("onnx inference failed (code %d)", int(rc))
	}

	masks := make([]frame.Mask, len(batch))
	plane := w * h
	for i, f := range batch {
		square := maskFromChannel(output[i*plane:(i+1)*plane], squareSize, squareSize, f.Index)
		masks[i] = frame.Mask{
			Index:  f.Index,
			Width:  f.Width,
			Height: f.Height,
			Pix:    resizeMaskBilinear(square.Pix, squareSize, squareSize, f.Width, f.Height),
		}
	}
	return masks, nil
}

func (e *onnxEngine) Close() error {
	C.ort_close(&e.handle)
	return nil
}
