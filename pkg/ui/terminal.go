package ui

import (
	"fmt"
	"io"
	"os"
)

// ASCIILogo is printed by the CLI banner
const ASCIILogo = `
 ___  __ _  __ _ / _| ___| |_ ___| |__
/ __|/ _' |/ _' | |_ / _ \ __/ __| '_ \
\__ \ (_| | (_| |  _|  __/ || (__| | | |
|___/\__,_|\__,_|_|  \___|\__\___|_| |_|
     archive scan fetcher`

// Output is where the print helpers write
var Output io.Writer = os.Stdout

// PrintLogo prints the ASCII logo with color
func PrintLogo() {
	fmt.Fprintln(Output, logoStyle.Render(ASCIILogo))
}

// PrintError prints an error message in red
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Fprintln(Output, Red(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(Output, Red(msg))
	}
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	fmt.Fprintln(Output, Green(msg))
}

// PrintInfo prints a labelled value
func PrintInfo(label string, value string) {
	fmt.Fprintf(Output, "%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message
func PrintWarning(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Fprintln(Output, Yellow(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(Output, Yellow(msg))
	}
}

// PrintHighlight prints a highlighted message in magenta
func PrintHighlight(msg string) {
	fmt.Fprintln(Output, Magenta(msg))
}
