package classifier

import "os"

// ONNXConfig names the graph bindings of an exported model
type ONNXConfig struct {
	SharedLibraryPath string
	InputName         string
	OutputName        string
	Features          int
}

// DefaultONNXConfig matches the names skl2onnx emits for classifiers.
// ONNXRUNTIME_LIB overrides the runtime library location.
func DefaultONNXConfig() ONNXConfig {
	return ONNXConfig{
		SharedLibraryPath: os.Getenv("ONNXRUNTIME_LIB"),
		InputName:         "float_input",
		OutputName:        "output_label",
		Features:          7,
	}
}
