package generator

var firstNames = []string{
	"Ana", "Beatriz", "Bruno", "Caio", "Camila", "Carlos", "Cecília", "Daniel",
	"Débora", "Eduardo", "Elisa", "Felipe", "Fernanda", "Gabriel", "Giovana",
	"Gustavo", "Heloísa", "Igor", "Isabela", "João", "Júlia", "Larissa", "Leonardo",
	"Letícia", "Lucas", "Luíza", "Marcelo", "Maria", "Mateus", "Natália", "Otávio",
	"Paulo", "Rafael", "Renata", "Rodrigo", "Sofia", "Thiago", "Valéria", "Vinícius",
	"Yasmin",
}

var lastNames = []string{
	"Almeida", "Araújo", "Barbosa", "Cardoso", "Carvalho", "Castro", "Correia",
	"Costa", "Dias", "Fernandes", "Ferreira", "Gomes", "Gonçalves", "Lima",
	"Martins", "Melo", "Monteiro", "Moreira", "Nascimento", "Oliveira", "Pereira",
	"Pinto", "Ribeiro", "Rocha", "Rodrigues", "Santos", "Silva", "Sousa", "Teixeira",
	"Vieira",
}

var emailDomains = []string{
	"example.com", "example.com.br", "example.net", "example.org",
}

// words feeds product names and review comments.
var words = []string{
	"abajur", "almofada", "armário", "bandeja", "banqueta", "caneca", "cadeira",
	"cesto", "cortina", "espelho", "estante", "garrafa", "jarra", "luminária",
	"mesa", "poltrona", "prateleira", "quadro", "relógio", "sofá", "tapete",
	"toalha", "travesseiro", "vaso", "bom", "ótimo", "entrega", "rápida",
	"qualidade", "produto", "chegou", "bem", "embalado", "recomendo", "preço",
	"justo", "bonito", "resistente", "confortável", "prático", "leve", "macio",
}
