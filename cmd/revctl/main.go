// Command revctl runs the proration engine and the fiscal calendar offline.
//
//	revctl prorate --amount 1100000 --start 2023-01-01 --end 2023-12-31
//	revctl fiscal 2023-12-15 2024-03-01
//	revctl fiscal-range --year 2024 --quarter 1
package main

import "os"

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}
