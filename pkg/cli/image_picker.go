package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/aihub-tools/aihub-export/pkg/console"
	"github.com/aihub-tools/aihub-export/pkg/export"
	"github.com/aihub-tools/aihub-export/pkg/fileutil"
	"github.com/aihub-tools/aihub-export/pkg/logger"
	"github.com/aihub-tools/aihub-export/pkg/tty"
	"github.com/charmbracelet/huh"
)

var imagePickerLog = logger.New("cli:image_picker")

// InteractiveImagePicker asks whether to attach a cover image and lets the
// user browse for a PNG file. Dismissing either prompt means no image.
type InteractiveImagePicker struct {
	// Dir is the directory the file picker opens in.
	Dir string
}

func (p InteractiveImagePicker) PickImage(ctx context.Context) ([]byte, error) {
	attach := true
	confirmForm := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Attach a cover image to the workflow?").
				Description("The image is shown for the workflow in the AIHub client").
				Affirmative("Yes, pick a PNG file").
				Negative("No, export without an image").
				Value(&attach),
		),
	).WithAccessible(console.IsAccessibleMode())

	if err := confirmForm.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			imagePickerLog.Print("Image prompt dismissed")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user input: %w", err)
	}
	if !attach {
		return nil, nil
	}

	dir := p.Dir
	if dir == "" {
		dir = "."
	}

	var path string
	pickerForm := huh.NewForm(
		huh.NewGroup(
			huh.NewFilePicker().
				Title("Cover image").
				Description("Select a PNG file").
				CurrentDirectory(dir).
				AllowedTypes([]string{".png"}).
				FileAllowed(true).
				DirAllowed(false).
				Picking(true).
				Value(&path),
		),
	).WithAccessible(console.IsAccessibleMode())

	if err := pickerForm.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			imagePickerLog.Print("File picker dismissed")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pick image: %w", err)
	}
	if path == "" {
		return nil, nil
	}

	imagePickerLog.Printf("Picked image: %s", path)
	return fileutil.ReadPNG(path)
}

// newImagePicker chooses how the export command obtains its cover image:
// --no-image wins, then --image, then an interactive prompt when both stdin
// and stdout are terminals. Otherwise no image is attached.
func newImagePicker(imagePath string, noImage bool, snapshotDir string) export.ImagePicker {
	switch {
	case noImage:
		return export.NoImage{}
	case imagePath != "":
		return export.FileImage{Path: imagePath}
	case tty.IsStdinTerminal() && tty.IsStdoutTerminal():
		return InteractiveImagePicker{Dir: snapshotDir}
	default:
		return export.NoImage{}
	}
}
