package main

import (
	dump1030 "github.com/doismellburning/dump1030/src"
)

func main() {
	dump1030.Dump1030Main()
}
