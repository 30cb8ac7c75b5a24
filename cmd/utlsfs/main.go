// Command utlsfs is the CLI entry point: format/mount an SFS image, or run
// a UTL-scheduled workload.
package main

import "github.com/oslab/utlsfs/cmd"

func main() {
	cmd.Execute()
}
