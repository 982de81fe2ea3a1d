// Package rfm calcula Recência, Frequência e valor Monetário por cliente
// a partir de um arquivo de itens de nota.
package rfm

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/vfg2006/rfm-segmentation-api/internal/domain"
	"golang.org/x/text/encoding/charmap"
)

// Load abre o arquivo e carrega a tabela
func Load(path string) (*domain.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, newError(KindLoad, errors.Wrap(err, "open"), "%s", path)
	}
	defer file.Close()

	return Read(file)
}

// Read carrega um CSV separado por vírgula, em ISO-8859-1, com cabeçalho.
// Linhas curtas são completadas com valores ausentes, linhas longas são erro.
func Read(r io.Reader) (*domain.Table, error) {
	reader := csv.NewReader(charmap.ISO8859_1.NewDecoder().Reader(r))
	reader.Comma = ','
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = false

	header, err := reader.Read()
	if err == io.EOF {
		return nil, newError(KindLoad, nil, "empty file")
	}
	if err != nil {
		return nil, newError(KindLoad, errors.Wrap(err, "read header"), "invalid delimited text")
	}

	table := &domain.Table{Columns: make([]string, len(header))}
	for i, name := range header {
		table.Columns[i] = strings.TrimSpace(name)
	}

	if missing := missingColumns(table); len(missing) > 0 {
		return nil, newError(KindLoad, nil, "missing required columns %s", strings.Join(missing, ", "))
	}

	quantityIdx := table.ColumnIndex(domain.ColumnQuantity)
	priceIdx := table.ColumnIndex(domain.ColumnUnitPrice)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, newError(KindLoad, errors.Wrap(err, "read record"), "invalid delimited text")
		}

		line, _ := reader.FieldPos(0)
		if len(record) > len(table.Columns) {
			return nil, newError(KindLoad, nil, "line %d: expected %d fields, found %d", line, len(table.Columns), len(record))
		}
		// Linha em branco no meio do arquivo
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" && len(table.Columns) > 1 {
			continue
		}
		for len(record) < len(table.Columns) {
			record = append(record, "")
		}

		if err := checkNumeric(record, quantityIdx, domain.ColumnQuantity, line, parseQuantity); err != nil {
			return nil, err
		}
		if err := checkNumeric(record, priceIdx, domain.ColumnUnitPrice, line, parseUnitPrice); err != nil {
			return nil, err
		}

		table.Rows = append(table.Rows, domain.TableRow{Line: line, Values: record})
	}

	return table, nil
}

// checkNumeric rejeita o arquivo quando a coluna numérica tem texto que não é
// número, mesmo que outra célula ausente fizesse a limpeza descartar a linha.
func checkNumeric[T any](record []string, idx int, col string, line int, parse func(string) (T, error)) error {
	v := record[idx]
	if isMissing(v) {
		return nil
	}
	_, err := parse(v)
	if err == nil {
		return nil
	}
	for i, other := range record {
		if i != idx && isMissing(other) {
			return newError(KindLoad, err, "line %d: invalid %s %q (row has missing values and would otherwise be dropped by cleaning)", line, col, v)
		}
	}
	return newError(KindLoad, err, "line %d: invalid %s %q", line, col, v)
}

func missingColumns(table *domain.Table) []string {
	var missing []string
	for _, col := range domain.RequiredColumns {
		if table.ColumnIndex(col) < 0 {
			missing = append(missing, col)
		}
	}
	return missing
}
