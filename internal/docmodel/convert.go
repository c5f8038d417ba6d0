package docmodel

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
)

// Converter turns an uploaded file at srcPath into a PDF at dstPath. The
// conversion tools themselves (ddjvu, ps2pdf) are external collaborators
// specified only by this interface; ExecConverter below is the production
// implementation. Tests substitute a fake.
type Converter interface {
	Convert(srcPath, dstPath string) error
}

// ExecConverter shells out to an external command, matching the source's
// "opaque subprocess taking an input path and an output path" contract.
// Plain os/exec is the correct tool here: there is no ecosystem library in
// play for invoking djvu/ps converters, just a subprocess with two path
// arguments, which os/exec already expresses directly.
type ExecConverter struct {
	// Name is the executable to run, e.g. "ddjvu" or "ps2pdf".
	Name string
	// Args, if non-nil, overrides the default "Name srcPath dstPath"
	// invocation shape with a custom argument template; an element equal
	// to "%src%" is replaced with srcPath and one equal to "%dst%" with
	// dstPath.
	Args []string
}

func (c ExecConverter) Convert(srcPath, dstPath string) error {
	args := c.Args
	if args == nil {
		args = []string{srcPath, dstPath}
	} else {
		expanded := make([]string, len(args))
		for i, a := range args {
			switch a {
			case "%src%":
				expanded[i] = srcPath
			case "%dst%":
				expanded[i] = dstPath
			default:
				expanded[i] = a
			}
		}
		args = expanded
	}

	cmd := exec.Command(c.Name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w: %s", c.Name, err, stderr.String())
	}
	return nil
}

// detectedFormat is the outcome of magic-byte sniffing on an uploaded
// buffer.
type detectedFormat struct {
	fileType  string
	converter Converter // nil for passthrough formats
}

// detectFormat implements the upload format table: PDF and EPUB pass
// through unconverted, DJVU and PostScript are converted to PDF via the
// given converters, and anything else is a conversion error (P9: total on
// every non-empty input, exactly one of the four magic prefixes or an
// error).
func detectFormat(buf []byte, djvu, ps Converter) (detectedFormat, error) {
	switch {
	case bytes.HasPrefix(buf, []byte("%PDF")):
		return detectedFormat{fileType: "pdf"}, nil
	case bytes.HasPrefix(buf, []byte("AT&TFORM")):
		return detectedFormat{fileType: "pdf", converter: djvu}, nil
	case bytes.HasPrefix(buf, []byte("%!PS-Adobe")):
		return detectedFormat{fileType: "pdf", converter: ps}, nil
	case bytes.HasPrefix(buf, []byte("PK")):
		return detectedFormat{fileType: "epub"}, nil
	default:
		return detectedFormat{}, newErr(KindConversionFailed, "detectFormat", fmt.Errorf("unrecognised format"))
	}
}

// convertToFile runs df's converter (if any) over data and returns the
// final bytes to persist, using two scratch temp files for subprocess
// converters that require real paths.
func convertToFile(df detectedFormat, data []byte) ([]byte, error) {
	if df.converter == nil {
		return data, nil
	}

	src, err := os.CreateTemp("", "remarkablefs-upload-*")
	if err != nil {
		return nil, newErr(KindConversionFailed, "convertToFile", err)
	}
	defer os.Remove(src.Name())
	defer src.Close()
	if _, err := src.Write(data); err != nil {
		return nil, newErr(KindConversionFailed, "convertToFile", err)
	}
	if err := src.Close(); err != nil {
		return nil, newErr(KindConversionFailed, "convertToFile", err)
	}

	dstPath := src.Name() + ".pdf"
	defer os.Remove(dstPath)

	if err := df.converter.Convert(src.Name(), dstPath); err != nil {
		return nil, newErr(KindConversionFailed, "convertToFile", err)
	}

	out, err := os.ReadFile(dstPath)
	if err != nil {
		return nil, newErr(KindConversionFailed, "convertToFile", err)
	}
	return out, nil
}
