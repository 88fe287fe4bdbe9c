package shell

import (
	"fmt"
	"os/exec"
	"runtime"
)

// OpenBrowser opens url in the desktop's default browser
func OpenBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	// the opener exits as soon as it hands off to the browser
	go cmd.Wait()
	return nil
}
