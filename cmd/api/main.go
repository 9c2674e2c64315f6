// @title          Gestion API
// @version        1.0
// @description    Usuarios, empresas, módulos, auditoría y catálogo multi-empresa.
// @BasePath       /
// @securityDefinitions.apikey Bearer
// @in             header
// @name           Authorization
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
