package command

import (
	"context"
	"fmt"

	"codewright/internal/logging"
	"codewright/internal/types"
)

// lifecycleOp selects which file-collaborator call a lifecycle handler
// performs. These handlers act immediately; there is nothing to review, so
// they bypass the staging pipeline.
type lifecycleOp int

const (
	opCreateFile lifecycleOp = iota
	opCreateFolder
	opDeleteFile
	opDeleteFolder
)

type lifecycleHandler struct {
	base
	op lifecycleOp
}

func NewCreateFileHandler() Handler {
	return &lifecycleHandler{
		base: base{
			id:          "createfile",
			name:        "Create file",
			description: "create an empty file: @createfile <path>",
			prefix:      "@createfile",
		},
		op: opCreateFile,
	}
}

func NewCreateFolderHandler() Handler {
	return &lifecycleHandler{
		base: base{
			id:          "createfolder",
			name:        "Create folder",
			description: "create a folder: @createfolder <path>",
			prefix:      "@createfolder",
		},
		op: opCreateFolder,
	}
}

func NewDeleteFileHandler() Handler {
	return &lifecycleHandler{
		base: base{
			id:          "deletefile",
			name:        "Delete file",
			description: "delete a file: @deletefile <path>",
			prefix:      "@deletefile",
		},
		op: opDeleteFile,
	}
}

func NewDeleteFolderHandler() Handler {
	return &lifecycleHandler{
		base: base{
			id:          "deletefolder",
			name:        "Delete folder",
			description: "delete a folder and its contents: @deletefolder <path>",
			prefix:      "@deletefolder",
		},
		op: opDeleteFolder,
	}
}

func (h *lifecycleHandler) Execute(_ context.Context, cc *Context) *types.HandlerResult {
	var (
		err  error
		done string
	)
	switch h.op {
	case opCreateFile:
		err = cc.Files.WriteFile(cc.ResourcePath, "")
		done = "Created file"
	case opCreateFolder:
		err = cc.Files.MakeDir(cc.ResourcePath)
		done = "Created folder"
	case opDeleteFile:
		err = cc.Files.Delete(cc.ResourcePath)
		done = "Deleted file"
	case opDeleteFolder:
		err = cc.Files.Delete(cc.ResourcePath)
		done = "Deleted folder"
	}
	if err != nil {
		return failure(err)
	}

	logging.Handler("%s %s", h.id, cc.ResourcePath)
	return &types.HandlerResult{
		Success: true,
		Message: fmt.Sprintf("%s %s.", done, cc.ResourcePath),
	}
}
