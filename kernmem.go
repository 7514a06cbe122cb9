package main

import (
	"fmt"

	"memtools/kernmem"
)

func runKernmem() error {
	r := kernmem.Collect(kernmem.Options{})

	fmt.Println("========== Linux Kernel Memory Usage (kernmem) ==========")
	fmt.Println()

	if s := r.Sections; s != nil {
		fmt.Println("Static kernel ELF sections (.text/.data/.bss):")
		fmt.Printf("  .text:      %10d kB\n", s.TextKB)
		fmt.Printf("  .data:      %10d kB\n", s.DataKB)
		fmt.Printf("  .bss:       %10d kB\n", s.BssKB)
		fmt.Printf("  Static total: %8d kB (%.2f MB)\n", s.TotalKB(), float64(s.TotalKB())/1024.0)
	} else {
		fmt.Println("Static kernel ELF sections: unavailable (no usable System.map/kallsyms)")
	}
	fmt.Println()

	fmt.Println("Dynamic kernel allocations (/proc/meminfo):")
	for _, row := range []struct {
		label string
		kb    int64
	}{
		{"Slab:", r.SlabKB},
		{"PageTables:", r.PageTablesKB},
		{"VmallocUsed:", r.VmallocKB},
		{"KernelStack:", r.KernelStackKB},
	} {
		if row.kb >= 0 {
			fmt.Printf("  %-12s %9d kB\n", row.label, row.kb)
		}
	}
	dyn := r.DynamicTotalKB()
	fmt.Printf("  Dynamic total: %8d kB (%.2f MB)\n", dyn, float64(dyn)/1024.0)
	fmt.Println()

	fmt.Println("Module memory (/proc/modules):")
	if r.ModulesKB >= 0 {
		fmt.Printf("  Modules:     %10d kB (%.2f MB)\n", r.ModulesKB, float64(r.ModulesKB)/1024.0)
	} else {
		fmt.Println("  Modules:     unavailable (no /proc/modules)")
	}
	fmt.Println()

	grand := r.GrandTotalKB()
	fmt.Println("============================================================")
	fmt.Printf("Estimated TOTAL kernel memory: %d kB (%.2f MB)\n", grand, float64(grand)/1024.0)
	return nil
}
