package pkgmgr

// InstallOptions select the scope and dependency class of an install.
type InstallOptions struct {
	// Global installs into the manager's global store instead of the local
	// node_modules.
	Global bool
	// SaveDev records the package as a development dependency. Ignored for
	// global installs by managers that make no such distinction.
	SaveDev bool
}

// InstallArgs builds the argument vector for installing the given packages
// with the given manager.
//
// Deno has no traditional install step; for it the result is an empty
// vector, a sentinel meaning "skip installation and explain the alternative
// mechanism", never "install nothing silently". Callers must check for it.
func InstallArgs(m Manager, packages []string, opts InstallOptions) []string {
	var args []string
	switch m {
	case Npm:
		args = []string{"install"}
		if opts.Global {
			args = append(args, "-g")
		}
		if opts.SaveDev {
			args = append(args, "--save-dev")
		}
	case Pnpm:
		args = []string{"add"}
		if opts.Global {
			args = append(args, "-g")
		}
		if opts.SaveDev {
			args = append(args, "--save-dev")
		}
	case Yarn:
		if opts.Global {
			args = []string{"global", "add"}
		} else {
			args = []string{"add"}
			if opts.SaveDev {
				args = append(args, "--dev")
			}
		}
	case Bun:
		args = []string{"add"}
		if opts.Global {
			args = append(args, "-g")
		}
		if opts.SaveDev {
			args = append(args, "--dev")
		}
	case Deno:
		return nil
	}
	return append(args, packages...)
}

// UninstallArgs builds the argument vector for removing the given packages.
// Deno yields the empty sentinel, as for InstallArgs.
func UninstallArgs(m Manager, packages []string, global bool) []string {
	var args []string
	switch m {
	case Npm:
		args = []string{"uninstall"}
		if global {
			args = append(args, "-g")
		}
	case Pnpm:
		args = []string{"remove"}
		if global {
			args = append(args, "-g")
		}
	case Yarn:
		if global {
			args = []string{"global", "remove"}
		} else {
			args = []string{"remove"}
		}
	case Bun:
		args = []string{"remove"}
		if global {
			args = append(args, "-g")
		}
	case Deno:
		return nil
	}
	return append(args, packages...)
}

// UpdateArgs builds the argument vector for updating the given packages.
// Deno yields the empty sentinel, as for InstallArgs.
func UpdateArgs(m Manager, packages []string, global bool) []string {
	var args []string
	switch m {
	case Npm:
		args = []string{"update"}
		if global {
			args = append(args, "-g")
		}
	case Pnpm:
		args = []string{"update"}
		if global {
			args = append(args, "-g")
		}
	case Yarn:
		if global {
			args = []string{"global", "upgrade"}
		} else {
			args = []string{"upgrade"}
		}
	case Bun:
		args = []string{"update"}
		if global {
			args = append(args, "-g")
		}
	case Deno:
		return nil
	}
	return append(args, packages...)
}

// ListArgs builds the argument vector for listing installed packages.
// Output is JSON where the manager supports it. An empty vector means the
// manager has no usable listing.
func ListArgs(m Manager, global bool) []string {
	switch m {
	case Npm:
		args := []string{"ls", "--json", "--depth=0"}
		if global {
			args = append(args, "-g")
		}
		return args
	case Pnpm:
		args := []string{"ls", "--json", "--depth=0"}
		if global {
			args = append(args, "-g")
		}
		return args
	case Yarn:
		if global {
			return []string{"global", "list"}
		}
		return []string{"list", "--depth=0"}
	case Bun:
		args := []string{"pm", "ls"}
		if global {
			args = append(args, "-g")
		}
		return args
	case Deno:
		return nil
	}
	return nil
}

// GlobalRootArgs builds the argument vector that prints the manager's
// global package root, used to resolve globally installed plugins. An empty
// vector means the manager does not expose one.
func GlobalRootArgs(m Manager) []string {
	switch m {
	case Npm:
		return []string{"root", "-g"}
	case Pnpm:
		return []string{"root", "-g"}
	case Yarn:
		return []string{"global", "dir"}
	default:
		return nil
	}
}
